package app

import (
	"context"
	"time"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BackOffice is the single entry point the HTTP layer and the auto-batch worker talk to.
type BackOffice struct {
	auth      *usecase.AuthUseCase
	orders    *usecase.OrderUseCase
	shipments *usecase.ShipmentUseCase
	batches   *usecase.BatchResolver
	engine    *usecase.StatusEngine
	health    HealthChecker
}

func NewBackOffice(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, shipments *usecase.ShipmentUseCase, batches *usecase.BatchResolver, engine *usecase.StatusEngine, health HealthChecker) *BackOffice {
	return &BackOffice{auth: auth, orders: orders, shipments: shipments, batches: batches, engine: engine, health: health}
}

func (f *BackOffice) Login(ctx context.Context, login, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, login, password)
}

func (f *BackOffice) CreateUser(ctx context.Context, login, password, role string) (*model.User, error) {
	return f.auth.CreateUser(ctx, login, password, role)
}

func (f *BackOffice) ResolveActor(ctx context.Context, token string) (model.Actor, error) {
	return f.auth.ResolveActor(ctx, token)
}

func (f *BackOffice) EnsureAdmin(ctx context.Context, login, password string) (bool, error) {
	return f.auth.EnsureAdmin(ctx, login, password)
}

func (f *BackOffice) CreateOrder(ctx context.Context, in usecase.CreateOrderInput, actor model.Actor) (*model.Order, error) {
	return f.orders.Create(ctx, in, actor)
}

func (f *BackOffice) Order(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, id)
}

func (f *BackOffice) Orders(ctx context.Context, statusFilter string, actor model.Actor) ([]model.Order, error) {
	return f.orders.List(ctx, statusFilter, actor)
}

func (f *BackOffice) ChangeOrderStatus(ctx context.Context, id int64, status string, actor model.Actor) (*model.Order, error) {
	return f.engine.TransitionOrder(ctx, id, status, actor)
}

func (f *BackOffice) Track(ctx context.Context, identifier string) (*usecase.TrackResult, error) {
	return f.orders.Track(ctx, identifier)
}

func (f *BackOffice) Shipment(ctx context.Context, id int64) (*model.Shipment, error) {
	return f.shipments.Get(ctx, id)
}

func (f *BackOffice) TrackShipment(ctx context.Context, trackingID string) (*usecase.ShipmentTracking, error) {
	return f.shipments.Track(ctx, trackingID)
}

func (f *BackOffice) Batch(ctx context.Context, batchNumber string) ([]model.Shipment, error) {
	return f.shipments.ListByBatch(ctx, batchNumber)
}

func (f *BackOffice) CreateBatchFromOrders(ctx context.Context, orderIDs []int64, departure *time.Time, actor model.Actor) (*model.Shipment, bool, error) {
	return f.batches.CreateFromOrders(ctx, orderIDs, departure, actor)
}

func (f *BackOffice) UpdateShipment(ctx context.Context, id int64, upd usecase.ShipmentUpdate, actor model.Actor) (*usecase.ShipmentTransition, error) {
	return f.shipments.Update(ctx, id, upd, actor)
}

func (f *BackOffice) ChangeShipmentStatus(ctx context.Context, id int64, upd usecase.StatusUpdate, actor model.Actor) (*usecase.ShipmentTransition, error) {
	return f.engine.TransitionShipment(ctx, id, upd, actor)
}

func (f *BackOffice) UpdateBatchStatus(ctx context.Context, batchNumber string, upd usecase.StatusUpdate, actor model.Actor) (usecase.BulkResult, error) {
	return f.engine.UpdateBatchStatus(ctx, batchNumber, upd, actor)
}

func (f *BackOffice) UpdateBulkStatus(ctx context.Context, ids []int64, upd usecase.StatusUpdate, actor model.Actor) (usecase.BulkResult, error) {
	return f.engine.UpdateBulkStatus(ctx, ids, upd, actor)
}

func (f *BackOffice) DeleteShipment(ctx context.Context, id int64) error {
	return f.shipments.Delete(ctx, id)
}

// RunAutoBatch batches pending orders synchronously.
func (f *BackOffice) RunAutoBatch(ctx context.Context, limit int) (int, error) {
	attached, err := f.batches.AutoBatch(ctx, limit)
	if err != nil {
		return attached, err
	}
	if _, err := f.batches.ReconcileDuplicates(ctx); err != nil {
		return attached, err
	}
	return attached, nil
}

func (f *BackOffice) PendingDays(ctx context.Context, limit int) ([]usecase.DayBatch, error) {
	return f.batches.PendingDays(ctx, limit)
}

func (f *BackOffice) AttachDay(ctx context.Context, day usecase.DayBatch) (int, error) {
	return f.batches.AttachDay(ctx, day)
}

func (f *BackOffice) ReconcileDuplicates(ctx context.Context) (int, error) {
	return f.batches.ReconcileDuplicates(ctx)
}

func (f *BackOffice) Health(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
