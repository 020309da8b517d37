// Package rbac implements the agency role lattice: OWNER sits above
// MANAGER and ADMIN, which are incomparable siblings.
package rbac

// Role is a closed three-value enum stored on the user row and carried in
// access-token claims.
type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// IsOwner reports whether r is the OWNER role.
func IsOwner(r Role) bool {
	return r == RoleOwner
}

// IsManager is true for OWNER and MANAGER: owners inherit manager-gated
// operations.
func IsManager(r Role) bool {
	return r == RoleOwner || r == RoleManager
}

// IsAdmin is true for OWNER and ADMIN. Unlike CanAccess it never lets a
// MANAGER through.
func IsAdmin(r Role) bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanAccess checks r against a required role set. OWNER always passes.
// MANAGER passes when the set names MANAGER or ADMIN; ADMIN only when it
// names ADMIN. The MANAGER-satisfies-ADMIN rule is long-standing product
// behavior and intentionally asymmetric with IsAdmin.
func CanAccess(r Role, required ...Role) bool {
	switch r {
	case RoleOwner:
		return true
	case RoleManager:
		for _, req := range required {
			if req == RoleManager || req == RoleAdmin {
				return true
			}
		}
	case RoleAdmin:
		for _, req := range required {
			if req == RoleAdmin {
				return true
			}
		}
	}
	return false
}

// Capability names a gated operation group. Handlers never test roles
// directly; they declare a capability and the table below decides.
type Capability string

const (
	CapManageClients      Capability = "clients:manage"
	CapManageJobs         Capability = "jobs:manage"
	CapManageCandidates   Capability = "candidates:manage"
	CapManageApplications Capability = "applications:manage"
	CapManageUsers        Capability = "users:manage"
	CapViewReports        Capability = "reports:view"
)

// capabilityRoles is the single authorization table. Board moves are absent
// deliberately: any signed-in user may move cards.
var capabilityRoles = map[Capability][]Role{
	CapManageClients:      {RoleManager},
	CapManageJobs:         {RoleManager},
	CapManageCandidates:   {RoleManager},
	CapManageApplications: {RoleManager},
	CapManageUsers:        {}, // owner only; CanAccess grants OWNER unconditionally
	CapViewReports:        {RoleManager, RoleAdmin},
}

// Allowed reports whether role r holds the capability.
func Allowed(r Role, cap Capability) bool {
	required, ok := capabilityRoles[cap]
	if !ok {
		return false
	}
	return CanAccess(r, required...)
}
