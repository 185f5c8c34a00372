package handlers

import (
	"context"
	"time"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/usecase"
)

// backOfficeStub implements BackOffice with per-method overrides. Methods
// without an override return zero values.
type backOfficeStub struct {
	LoginFn                func(context.Context, string, string) (*model.User, string, error)
	CreateUserFn           func(context.Context, string, string, string) (*model.User, error)
	CreateOrderFn          func(context.Context, usecase.CreateOrderInput, model.Actor) (*model.Order, error)
	OrderFn                func(context.Context, int64) (*model.Order, error)
	OrdersFn               func(context.Context, string, model.Actor) ([]model.Order, error)
	ChangeOrderStatusFn    func(context.Context, int64, string, model.Actor) (*model.Order, error)
	TrackFn                func(context.Context, string) (*usecase.TrackResult, error)
	ShipmentFn             func(context.Context, int64) (*model.Shipment, error)
	TrackShipmentFn        func(context.Context, string) (*usecase.ShipmentTracking, error)
	BatchFn                func(context.Context, string) ([]model.Shipment, error)
	CreateBatchFn          func(context.Context, []int64, *time.Time, model.Actor) (*model.Shipment, bool, error)
	UpdateShipmentFn       func(context.Context, int64, usecase.ShipmentUpdate, model.Actor) (*usecase.ShipmentTransition, error)
	ChangeShipmentStatusFn func(context.Context, int64, usecase.StatusUpdate, model.Actor) (*usecase.ShipmentTransition, error)
	UpdateBatchStatusFn    func(context.Context, string, usecase.StatusUpdate, model.Actor) (usecase.BulkResult, error)
	UpdateBulkStatusFn     func(context.Context, []int64, usecase.StatusUpdate, model.Actor) (usecase.BulkResult, error)
	DeleteShipmentFn       func(context.Context, int64) error
	RunAutoBatchFn         func(context.Context, int) (int, error)
	HealthErr              error
	Actor                  model.Actor
}

func (s backOfficeStub) Login(ctx context.Context, login, password string) (*model.User, string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, login, password)
	}
	return &model.User{ID: 1, Login: login, Role: model.RoleAdmin, Status: model.UserStatusActive}, "token", nil
}

func (s backOfficeStub) CreateUser(ctx context.Context, login, password, role string) (*model.User, error) {
	if s.CreateUserFn != nil {
		return s.CreateUserFn(ctx, login, password, role)
	}
	return &model.User{ID: 2, Login: login, Role: model.Role(role), Status: model.UserStatusActive}, nil
}

func (s backOfficeStub) ResolveActor(context.Context, string) (model.Actor, error) {
	return s.Actor, nil
}

func (s backOfficeStub) CreateOrder(ctx context.Context, in usecase.CreateOrderInput, actor model.Actor) (*model.Order, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, in, actor)
	}
	return &model.Order{ID: 1}, nil
}

func (s backOfficeStub) Order(ctx context.Context, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id}, nil
}

func (s backOfficeStub) Orders(ctx context.Context, filter string, actor model.Actor) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filter, actor)
	}
	return nil, nil
}

func (s backOfficeStub) ChangeOrderStatus(ctx context.Context, id int64, status string, actor model.Actor) (*model.Order, error) {
	if s.ChangeOrderStatusFn != nil {
		return s.ChangeOrderStatusFn(ctx, id, status, actor)
	}
	return &model.Order{ID: id, Status: model.OrderStatus(status)}, nil
}

func (s backOfficeStub) Track(ctx context.Context, identifier string) (*usecase.TrackResult, error) {
	if s.TrackFn != nil {
		return s.TrackFn(ctx, identifier)
	}
	return &usecase.TrackResult{Kind: usecase.TrackOrder, Order: &model.Order{OrderNumber: identifier}}, nil
}

func (s backOfficeStub) Shipment(ctx context.Context, id int64) (*model.Shipment, error) {
	if s.ShipmentFn != nil {
		return s.ShipmentFn(ctx, id)
	}
	return &model.Shipment{ID: id}, nil
}

func (s backOfficeStub) TrackShipment(ctx context.Context, trackingID string) (*usecase.ShipmentTracking, error) {
	if s.TrackShipmentFn != nil {
		return s.TrackShipmentFn(ctx, trackingID)
	}
	return &usecase.ShipmentTracking{TrackingID: trackingID}, nil
}

func (s backOfficeStub) Batch(ctx context.Context, batchNumber string) ([]model.Shipment, error) {
	if s.BatchFn != nil {
		return s.BatchFn(ctx, batchNumber)
	}
	return []model.Shipment{{ID: 1, BatchNumber: batchNumber}}, nil
}

func (s backOfficeStub) CreateBatchFromOrders(ctx context.Context, ids []int64, departure *time.Time, actor model.Actor) (*model.Shipment, bool, error) {
	if s.CreateBatchFn != nil {
		return s.CreateBatchFn(ctx, ids, departure, actor)
	}
	return &model.Shipment{ID: 1, OrderIDs: ids}, true, nil
}

func (s backOfficeStub) UpdateShipment(ctx context.Context, id int64, upd usecase.ShipmentUpdate, actor model.Actor) (*usecase.ShipmentTransition, error) {
	if s.UpdateShipmentFn != nil {
		return s.UpdateShipmentFn(ctx, id, upd, actor)
	}
	return &usecase.ShipmentTransition{Shipment: &model.Shipment{ID: id}}, nil
}

func (s backOfficeStub) ChangeShipmentStatus(ctx context.Context, id int64, upd usecase.StatusUpdate, actor model.Actor) (*usecase.ShipmentTransition, error) {
	if s.ChangeShipmentStatusFn != nil {
		return s.ChangeShipmentStatusFn(ctx, id, upd, actor)
	}
	return &usecase.ShipmentTransition{Shipment: &model.Shipment{ID: id, CurrentStatus: model.ShipmentStatus(upd.Status)}}, nil
}

func (s backOfficeStub) UpdateBatchStatus(ctx context.Context, batchNumber string, upd usecase.StatusUpdate, actor model.Actor) (usecase.BulkResult, error) {
	if s.UpdateBatchStatusFn != nil {
		return s.UpdateBatchStatusFn(ctx, batchNumber, upd, actor)
	}
	return usecase.BulkResult{}, nil
}

func (s backOfficeStub) UpdateBulkStatus(ctx context.Context, ids []int64, upd usecase.StatusUpdate, actor model.Actor) (usecase.BulkResult, error) {
	if s.UpdateBulkStatusFn != nil {
		return s.UpdateBulkStatusFn(ctx, ids, upd, actor)
	}
	return usecase.BulkResult{Requested: len(ids), Updated: len(ids)}, nil
}

func (s backOfficeStub) DeleteShipment(ctx context.Context, id int64) error {
	if s.DeleteShipmentFn != nil {
		return s.DeleteShipmentFn(ctx, id)
	}
	return nil
}

func (s backOfficeStub) RunAutoBatch(ctx context.Context, limit int) (int, error) {
	if s.RunAutoBatchFn != nil {
		return s.RunAutoBatchFn(ctx, limit)
	}
	return 0, nil
}

func (s backOfficeStub) Health(context.Context) error {
	return s.HealthErr
}

var _ BackOffice = backOfficeStub{}
