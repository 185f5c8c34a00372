package repository

import (
	"context"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Order, error)
	// GetByNumber matches either the order number or the tracking id.
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	// ListUnbatched returns orders that carry a departure date but no shipment.
	ListUnbatched(ctx context.Context, limit int) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error
	// SetStatusForIDs writes status onto every listed order without validation.
	SetStatusForIDs(ctx context.Context, ids []int64, status model.OrderStatus) (int64, error)
	AssignShipment(ctx context.Context, ids []int64, shipmentID int64, batchNumber string) error
}
