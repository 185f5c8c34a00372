package repository

import (
	"context"
	"time"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

// ShipmentRepository describes persistence operations with shipment batches.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *model.Shipment) (*model.Shipment, error)
	GetByID(ctx context.Context, id int64) (*model.Shipment, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Shipment, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*model.Shipment, error)
	ListByBatch(ctx context.Context, batchNumber string) ([]model.Shipment, error)
	// FindByDepartureRange returns shipments departing in [from, to), oldest first.
	FindByDepartureRange(ctx context.Context, from, to time.Time) ([]model.Shipment, error)
	// ListDuplicateDays returns calendar days in loc holding more than one shipment.
	ListDuplicateDays(ctx context.Context, loc *time.Location) ([]time.Time, error)
	TrackingIDExists(ctx context.Context, trackingID string) (bool, error)
	// MaxBatchSequence returns the highest numeric suffix among batch numbers with prefix, or 0.
	MaxBatchSequence(ctx context.Context, prefix string) (int, error)
	// AddOrders appends ids to the shipment order list, skipping ids already present.
	AddOrders(ctx context.Context, id int64, orderIDs []int64) error
	// MergeInto folds duplicates into the canonical shipment: order lists are
	// united, member orders are repointed and only then are duplicates deleted.
	MergeInto(ctx context.Context, canonical *model.Shipment, duplicateIDs []int64) error
	UpdateStatus(ctx context.Context, id int64, status model.ShipmentStatus, entry model.HistoryEntry) error
	Update(ctx context.Context, id int64, patch model.ShipmentPatch) error
	// Delete clears the shipment reference on member orders and removes the shipment.
	Delete(ctx context.Context, id int64) error
}
