package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

// ShipmentResponse is the JSON view of a shipment.
type ShipmentResponse struct {
	ID                    int64                `json:"id"`
	TrackingID            string               `json:"trackingId"`
	BatchNumber           string               `json:"batchNumber"`
	DepartureDate         time.Time            `json:"departureDate"`
	EstimatedDeliveryDate *time.Time           `json:"estimatedDeliveryDate,omitempty"`
	CurrentStatus         string               `json:"currentStatus"`
	OriginBranchID        *int64               `json:"originBranchId,omitempty"`
	DestinationBranchID   *int64               `json:"destinationBranchId,omitempty"`
	ShipperID             *int64               `json:"shipperId,omitempty"`
	ReceiverID            *int64               `json:"receiverId,omitempty"`
	OrderIDs              []int64              `json:"orderIds"`
	Parcels               []model.Parcel       `json:"parcels"`
	History               []model.HistoryEntry `json:"history"`
	TotalWeight           decimal.Decimal      `json:"totalWeight"`
	WeightUnit            string               `json:"weightUnit"`
	ShippingCost          decimal.Decimal      `json:"shippingCost"`
	InsuranceAmount       decimal.Decimal      `json:"insuranceAmount"`
	CreatedAt             time.Time            `json:"createdAt"`
	UpdatedAt             time.Time            `json:"updatedAt"`
}

// TrackingResponse is the public projection of a shipment.
type TrackingResponse struct {
	TrackingID            string               `json:"trackingId"`
	Status                string               `json:"status"`
	OriginBranchID        *int64               `json:"originBranchId,omitempty"`
	DestinationBranchID   *int64               `json:"destinationBranchId,omitempty"`
	EstimatedDeliveryDate *time.Time           `json:"estimatedDeliveryDate,omitempty"`
	CreatedAt             time.Time            `json:"createdAt"`
	History               []model.HistoryEntry `json:"history"`
	Parcels               []model.Parcel       `json:"parcels"`
}

// CreateFromOrdersRequest batches existing orders together.
type CreateFromOrdersRequest struct {
	OrderIDs      []int64 `json:"orderIds"`
	DepartureDate string  `json:"departureDate"`
}

// CreateFromOrdersResponse reports the batch the orders landed in.
type CreateFromOrdersResponse struct {
	Shipment ShipmentResponse `json:"shipment"`
	Created  bool             `json:"created"`
}

// BulkStatusRequest moves several shipments at once.
type BulkStatusRequest struct {
	ShipmentIDs []int64 `json:"shipmentIds"`
	Status      string  `json:"status"`
	Location    string  `json:"location"`
	Notes       string  `json:"notes"`
}

// BulkFailure names a shipment that was not updated.
type BulkFailure struct {
	ShipmentID int64  `json:"shipmentId"`
	Reason     string `json:"reason"`
}

// BulkResultResponse summarizes a batch or bulk status update.
type BulkResultResponse struct {
	Requested      int           `json:"requested"`
	Updated        int           `json:"updated"`
	CascadedOrders int64         `json:"cascadedOrders"`
	Failed         []BulkFailure `json:"failed"`
}

// ShipmentUpdateRequest patches shipment fields; status is optional.
type ShipmentUpdateRequest struct {
	EstimatedDeliveryDate string           `json:"estimatedDeliveryDate"`
	DestinationBranchID   *int64           `json:"destinationBranchId"`
	ReceiverID            *int64           `json:"receiverId"`
	Parcels               []model.Parcel   `json:"parcels"`
	TotalWeight           *decimal.Decimal `json:"totalWeight"`
	ShippingCost          *decimal.Decimal `json:"shippingCost"`
	InsuranceAmount       *decimal.Decimal `json:"insuranceAmount"`
	Status                string           `json:"status"`
	Location              string           `json:"location"`
	Notes                 string           `json:"notes"`
}

// ShipmentTransitionResponse is returned after a shipment status change.
type ShipmentTransitionResponse struct {
	Shipment       ShipmentResponse `json:"shipment"`
	CascadedOrders int64            `json:"cascadedOrders"`
}
