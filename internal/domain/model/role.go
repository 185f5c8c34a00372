package model

import "strings"

// Role is a back-office role name.
type Role string

const (
	RoleDriver      Role = "Driver"
	RoleHubReceiver Role = "Hub Receiver"
	RoleAdmin       Role = "Admin"
	RoleSuperAdmin  Role = "Super Admin"
)

// Permission is an action on a resource, written as resource:action.
type Permission string

const (
	PermOrderCreate          Permission = "order:create"
	PermOrderModify          Permission = "order:modify"
	PermOrderDelete          Permission = "order:delete"
	PermOrderView            Permission = "order:view"
	PermShipmentStatusUpdate Permission = "shipment:status_update"
	PermShipmentBulkUpdate   Permission = "shipment:bulk_update"
	PermShipmentView         Permission = "shipment:view"
	PermUserCreate           Permission = "user:create"
	PermUserModify           Permission = "user:modify"
	PermUserDelete           Permission = "user:delete"
	PermUserView             Permission = "user:view"
	PermFrontendEdit         Permission = "frontend:edit"
	PermFrontendReviews      Permission = "frontend:reviews"
	PermSettingsModify       Permission = "settings:modify"
)

// AllPermissions is the closed permission set.
var AllPermissions = []Permission{
	PermOrderCreate, PermOrderModify, PermOrderDelete, PermOrderView,
	PermShipmentStatusUpdate, PermShipmentBulkUpdate, PermShipmentView,
	PermUserCreate, PermUserModify, PermUserDelete, PermUserView,
	PermFrontendEdit, PermFrontendReviews, PermSettingsModify,
}

var rolePermissions = map[Role][]Permission{
	RoleDriver: {
		PermOrderView, PermOrderModify,
		PermShipmentView, PermShipmentStatusUpdate,
	},
	RoleHubReceiver: {
		PermOrderCreate, PermOrderView,
		PermShipmentView,
	},
	RoleAdmin: {
		PermOrderCreate, PermOrderModify, PermOrderView,
		PermShipmentStatusUpdate, PermShipmentBulkUpdate, PermShipmentView,
		PermUserView,
	},
}

var legacyRoles = map[string]Role{
	"staff":       RoleHubReceiver,
	"staffmember": RoleHubReceiver,
	"manager":     RoleAdmin,
	"managerrole": RoleAdmin,
	"driver":      RoleDriver,
	"hubreceiver": RoleHubReceiver,
	"admin":       RoleAdmin,
	"superadmin":  RoleSuperAdmin,
}

// ParseRole maps current and legacy role names onto a Role.
func ParseRole(name string) (Role, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(name), ""))
	key = strings.NewReplacer("_", "", "-", "").Replace(key)
	role, ok := legacyRoles[key]
	return role, ok
}

// Can reports whether the role holds the permission. Super Admin holds all of them.
func (r Role) Can(p Permission) bool {
	if r == RoleSuperAdmin {
		return true
	}
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// Permissions lists the permissions granted to the role.
func (r Role) Permissions() []Permission {
	if r == RoleSuperAdmin {
		return append([]Permission(nil), AllPermissions...)
	}
	return append([]Permission(nil), rolePermissions[r]...)
}
