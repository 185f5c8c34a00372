package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/repository"
)

// ShipmentTracking is the public view of a shipment.
type ShipmentTracking struct {
	TrackingID            string
	Status                model.ShipmentStatus
	OriginBranchID        *int64
	DestinationBranchID   *int64
	EstimatedDeliveryDate *time.Time
	CreatedAt             time.Time
	History               []model.HistoryEntry
	Parcels               []model.Parcel
}

// ShipmentUpdate patches shipment fields and optionally moves its status.
type ShipmentUpdate struct {
	Patch  model.ShipmentPatch
	Status *StatusUpdate
}

// ShipmentUseCase serves shipment reads and edits. Status changes go through
// the StatusEngine.
type ShipmentUseCase struct {
	shipments repository.ShipmentRepository
	engine    *StatusEngine
}

// NewShipmentUseCase constructs ShipmentUseCase.
func NewShipmentUseCase(shipments repository.ShipmentRepository, engine *StatusEngine) *ShipmentUseCase {
	return &ShipmentUseCase{shipments: shipments, engine: engine}
}

// Get returns a shipment by id.
func (u *ShipmentUseCase) Get(ctx context.Context, id int64) (*model.Shipment, error) {
	shipment, err := u.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "shipment", id)
	}
	return shipment, nil
}

// Track returns the public projection of the shipment with trackingID.
func (u *ShipmentUseCase) Track(ctx context.Context, trackingID string) (*ShipmentTracking, error) {
	trackingID = strings.ToUpper(strings.TrimSpace(trackingID))
	if trackingID == "" {
		return nil, fmt.Errorf("%w: empty tracking id", domainErrors.ErrMalformedIdentifier)
	}
	s, err := u.shipments.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, trackMiss(err, trackingID)
	}
	return &ShipmentTracking{
		TrackingID:            s.TrackingID,
		Status:                s.CurrentStatus,
		OriginBranchID:        s.OriginBranchID,
		DestinationBranchID:   s.DestinationBranchID,
		EstimatedDeliveryDate: s.EstimatedDeliveryDate,
		CreatedAt:             s.CreatedAt,
		History:               s.History,
		Parcels:               s.Parcels,
	}, nil
}

// ListByBatch returns every shipment carrying batchNumber.
func (u *ShipmentUseCase) ListByBatch(ctx context.Context, batchNumber string) ([]model.Shipment, error) {
	batchNumber = strings.ToUpper(strings.TrimSpace(batchNumber))
	list, err := u.shipments.ListByBatch(ctx, batchNumber)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domainErrors.NewNotFoundError("batch", batchNumber)
	}
	return list, nil
}

// Update applies the field patch, then the status change when one is requested.
// A status change that would be rejected leaves the patch unwritten.
func (u *ShipmentUseCase) Update(ctx context.Context, id int64, upd ShipmentUpdate, actor model.Actor) (*ShipmentTransition, error) {
	if upd.Patch.Empty() && upd.Status == nil {
		return nil, domainErrors.NewValidationError("nothing to update")
	}
	if !upd.Patch.Empty() {
		if actor.IsDriver() {
			return nil, fmt.Errorf("%w: drivers may only change shipment status", domainErrors.ErrPermissionDenied)
		}
		if err := validatePatch(upd.Patch); err != nil {
			return nil, err
		}
		if upd.Status != nil {
			if err := u.engine.CheckShipmentTransition(ctx, id, *upd.Status, actor); err != nil {
				return nil, err
			}
		}
		if err := u.shipments.Update(ctx, id, upd.Patch); err != nil {
			return nil, notFound(err, "shipment", id)
		}
	}
	if upd.Status != nil {
		return u.engine.TransitionShipment(ctx, id, *upd.Status, actor)
	}

	shipment, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ShipmentTransition{Shipment: shipment}, nil
}

// Delete clears member order references and removes the shipment.
func (u *ShipmentUseCase) Delete(ctx context.Context, id int64) error {
	if err := u.shipments.Delete(ctx, id); err != nil {
		return notFound(err, "shipment", id)
	}
	return nil
}

func validatePatch(p model.ShipmentPatch) error {
	verr := domainErrors.NewValidationError("invalid shipment fields")
	if p.TotalWeight != nil && p.TotalWeight.IsNegative() {
		verr.WithField("totalWeight", "must be >= 0")
	}
	if p.ShippingCost != nil && p.ShippingCost.IsNegative() {
		verr.WithField("shippingCost", "must be >= 0")
	}
	if p.InsuranceAmount != nil && p.InsuranceAmount.IsNegative() {
		verr.WithField("insuranceAmount", "must be >= 0")
	}
	for i, parcel := range p.Parcels {
		if parcel.Weight.IsNegative() {
			verr.WithField(fmt.Sprintf("parcels[%d].weight", i), "must be >= 0")
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
