package model

import "time"

// UserStatus marks whether a back-office account may sign in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User represents a back-office operator.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID   int64
	Role Role
}

// SystemActor performs background work such as auto batching.
var SystemActor = Actor{Role: RoleSuperAdmin}

// IsDriver reports whether status changes of the actor are restricted.
func (a Actor) IsDriver() bool {
	return a.Role == RoleDriver
}

// Ref returns a pointer to the actor id, nil for the system actor.
func (a Actor) Ref() *int64 {
	if a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}
