package handlers

import (
	"context"
	"time"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Login(ctx context.Context, login, password string) (*model.User, string, error)
	CreateUser(ctx context.Context, login, password, role string) (*model.User, error)
	ResolveActor(ctx context.Context, token string) (model.Actor, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, in usecase.CreateOrderInput, actor model.Actor) (*model.Order, error)
	Order(ctx context.Context, id int64) (*model.Order, error)
	Orders(ctx context.Context, statusFilter string, actor model.Actor) ([]model.Order, error)
	ChangeOrderStatus(ctx context.Context, id int64, status string, actor model.Actor) (*model.Order, error)
	Track(ctx context.Context, identifier string) (*usecase.TrackResult, error)
}

// ShipmentFacade provides shipment and batch operations.
type ShipmentFacade interface {
	Shipment(ctx context.Context, id int64) (*model.Shipment, error)
	TrackShipment(ctx context.Context, trackingID string) (*usecase.ShipmentTracking, error)
	Batch(ctx context.Context, batchNumber string) ([]model.Shipment, error)
	CreateBatchFromOrders(ctx context.Context, orderIDs []int64, departure *time.Time, actor model.Actor) (*model.Shipment, bool, error)
	UpdateShipment(ctx context.Context, id int64, upd usecase.ShipmentUpdate, actor model.Actor) (*usecase.ShipmentTransition, error)
	ChangeShipmentStatus(ctx context.Context, id int64, upd usecase.StatusUpdate, actor model.Actor) (*usecase.ShipmentTransition, error)
	UpdateBatchStatus(ctx context.Context, batchNumber string, upd usecase.StatusUpdate, actor model.Actor) (usecase.BulkResult, error)
	UpdateBulkStatus(ctx context.Context, ids []int64, upd usecase.StatusUpdate, actor model.Actor) (usecase.BulkResult, error)
	DeleteShipment(ctx context.Context, id int64) error
	RunAutoBatch(ctx context.Context, limit int) (int, error)
}

// HealthFacade reports backing store availability.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// BackOffice aggregates the full set of operations used across handlers.
type BackOffice interface {
	AuthFacade
	OrderFacade
	ShipmentFacade
	HealthFacade
}
