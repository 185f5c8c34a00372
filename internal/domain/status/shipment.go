package status

import (
	"strings"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

var shipmentCanonical = map[string]model.ShipmentStatus{
	"processing":     model.ShipmentStatusProcessing,
	"pending":        model.ShipmentStatusProcessing,
	"confirmed":      model.ShipmentStatusProcessing,
	"intransit":      model.ShipmentStatusInTransit,
	"outfordelivery": model.ShipmentStatusOutForDelivery,
	"delivered":      model.ShipmentStatusDelivered,
	"completed":      model.ShipmentStatusDelivered,
	"onhold":         model.ShipmentStatusOnHold,
	"cancelled":      model.ShipmentStatusOnHold,
	"canceled":       model.ShipmentStatusOnHold,
}

var shipmentAdjacency = map[model.ShipmentStatus][]model.ShipmentStatus{
	model.ShipmentStatusProcessing:     {model.ShipmentStatusInTransit, model.ShipmentStatusOnHold},
	model.ShipmentStatusOnHold:         {model.ShipmentStatusProcessing, model.ShipmentStatusInTransit},
	model.ShipmentStatusInTransit:      {model.ShipmentStatusOutForDelivery, model.ShipmentStatusOnHold},
	model.ShipmentStatusOutForDelivery: {model.ShipmentStatusDelivered},
	model.ShipmentStatusDelivered:      nil,
}

var shipmentToOrder = map[model.ShipmentStatus]model.OrderStatus{
	model.ShipmentStatusProcessing:     model.OrderStatusProcessing,
	model.ShipmentStatusOnHold:         model.OrderStatusProcessing,
	model.ShipmentStatusInTransit:      model.OrderStatusInTransit,
	model.ShipmentStatusOutForDelivery: model.OrderStatusOutForDelivery,
	model.ShipmentStatusDelivered:      model.OrderStatusDelivered,
}

// ParseShipmentStatus resolves raw against the shipment vocabulary. Pipeline
// names are accepted and mapped onto their coarse bucket. Unknown input is rejected.
func ParseShipmentStatus(raw string) (model.ShipmentStatus, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	key := Normalize(raw)
	if s, ok := shipmentCanonical[key]; ok {
		return s, true
	}
	if o, ok := ToCanonical(key); ok {
		return ShipmentStatusForOrder(o), true
	}
	return "", false
}

// ShipmentStatusFromStored reads a persisted shipment status. Unrecognized
// legacy values fall back to Processing.
func ShipmentStatusFromStored(raw string) model.ShipmentStatus {
	if s, ok := ParseShipmentStatus(raw); ok {
		return s
	}
	return model.ShipmentStatusProcessing
}

// AllowedNextShipment lists the shipment statuses reachable from s in one step.
func AllowedNextShipment(s model.ShipmentStatus) []model.ShipmentStatus {
	return shipmentAdjacency[s]
}

// CanTransitionShipment reports whether a shipment may move between the two statuses.
func CanTransitionShipment(from, to model.ShipmentStatus) bool {
	for _, next := range shipmentAdjacency[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderStatusForShipment maps a shipment status onto the status its member orders take.
func OrderStatusForShipment(s model.ShipmentStatus) model.OrderStatus {
	if o, ok := shipmentToOrder[s]; ok {
		return o
	}
	return model.OrderStatusProcessing
}

// ShipmentStatusForOrder buckets a pipeline step into the shipment vocabulary.
func ShipmentStatusForOrder(o model.OrderStatus) model.ShipmentStatus {
	switch o {
	case model.OrderStatusReceived, model.OrderStatusProcessing:
		return model.ShipmentStatusProcessing
	case model.OrderStatusOutForDelivery:
		return model.ShipmentStatusOutForDelivery
	case model.OrderStatusDelivered:
		return model.ShipmentStatusDelivered
	default:
		return model.ShipmentStatusInTransit
	}
}

// DriverMayTarget reports whether a Driver may request the given status.
func DriverMayTarget(s string) bool {
	switch Normalize(s) {
	case Normalize(string(model.OrderStatusOutForDelivery)), Normalize(string(model.OrderStatusDelivered)):
		return true
	}
	return false
}
