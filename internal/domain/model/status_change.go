package model

import "time"

// EntityKind names the kind of record whose status changed.
type EntityKind string

const (
	EntityOrder    EntityKind = "order"
	EntityShipment EntityKind = "shipment"
)

// StatusChange is the audit record emitted after a successful transition.
type StatusChange struct {
	Entity     EntityKind `json:"entity"`
	EntityID   int64      `json:"entityId"`
	Reference  string     `json:"reference,omitempty"`
	OldStatus  string     `json:"oldStatus"`
	NewStatus  string     `json:"newStatus"`
	ActorID    int64      `json:"actorId"`
	ActorRole  Role       `json:"actorRole"`
	Cascaded   bool       `json:"cascaded,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}
