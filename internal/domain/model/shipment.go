package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentStatus is the coarse lifecycle of a shipment batch.
type ShipmentStatus string

const (
	ShipmentStatusProcessing     ShipmentStatus = "Processing"
	ShipmentStatusInTransit      ShipmentStatus = "In Transit"
	ShipmentStatusOutForDelivery ShipmentStatus = "Out for Delivery"
	ShipmentStatusDelivered      ShipmentStatus = "Delivered"
	ShipmentStatusOnHold         ShipmentStatus = "On Hold"
)

const (
	DefaultWeightUnit      = "kg"
	DefaultHistoryLocation = "N/A"
)

// Parcel is a physical package inside a shipment.
type Parcel struct {
	Description string           `json:"description"`
	Weight      decimal.Decimal  `json:"weight"`
	Unit        string           `json:"unit"`
	Value       *decimal.Decimal `json:"value,omitempty"`
}

// HistoryEntry records a shipment status change.
type HistoryEntry struct {
	Status    ShipmentStatus `json:"status"`
	Location  string         `json:"location"`
	Notes     string         `json:"notes,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	UpdatedBy *int64         `json:"updatedBy,omitempty"`
}

// Shipment is the batch grouping every order departing on one day.
type Shipment struct {
	ID                    int64
	TrackingID            string
	BatchNumber           string
	DepartureDate         time.Time
	EstimatedDeliveryDate *time.Time
	CurrentStatus         ShipmentStatus
	OriginBranchID        *int64
	DestinationBranchID   *int64
	ShipperID             *int64
	ReceiverID            *int64
	OrderIDs              []int64
	LegacyOrderID         *int64
	Parcels               []Parcel
	History               []HistoryEntry
	TotalWeight           decimal.Decimal
	WeightUnit            string
	ShippingCost          decimal.Decimal
	InsuranceAmount       decimal.Decimal
	CreatedBy             *int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// MemberOrderIDs returns every order linked to the shipment, legacy link included.
func (s *Shipment) MemberOrderIDs() []int64 {
	ids := make([]int64, 0, len(s.OrderIDs)+1)
	seen := make(map[int64]struct{}, len(s.OrderIDs)+1)
	for _, id := range s.OrderIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if s.LegacyOrderID != nil {
		if _, ok := seen[*s.LegacyOrderID]; !ok {
			ids = append(ids, *s.LegacyOrderID)
		}
	}
	return ids
}

// HasOrder reports whether the order is already a member of the shipment.
func (s *Shipment) HasOrder(orderID int64) bool {
	for _, id := range s.OrderIDs {
		if id == orderID {
			return true
		}
	}
	return false
}

// ShipmentPatch holds optional shipment field updates.
type ShipmentPatch struct {
	EstimatedDeliveryDate *time.Time
	DestinationBranchID   *int64
	ReceiverID            *int64
	Parcels               []Parcel
	TotalWeight           *decimal.Decimal
	ShippingCost          *decimal.Decimal
	InsuranceAmount       *decimal.Decimal
}

// Empty reports whether the patch changes nothing.
func (p ShipmentPatch) Empty() bool {
	return p.EstimatedDeliveryDate == nil && p.DestinationBranchID == nil && p.ReceiverID == nil &&
		p.Parcels == nil && p.TotalWeight == nil && p.ShippingCost == nil && p.InsuranceAmount == nil
}
