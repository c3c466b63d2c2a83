package model

// Role identifies what a principal may do.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleClientOwner Role = "client_owner"
	RoleTenantUser  Role = "tenant_user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleClientOwner, RoleTenantUser:
		return true
	}
	return false
}

// Principal is the authenticated identity of a request. It is rebuilt from
// the bearer token on every call and never persisted.
type Principal struct {
	ID       string  `json:"id"`
	Role     Role    `json:"role"`
	TenantID *string `json:"tenantId"`
	Email    string  `json:"email"`
}

func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == RoleSuperAdmin
}

// Tenant returns the principal's tenant ID or "" for platform principals.
func (p *Principal) Tenant() string {
	if p == nil || p.TenantID == nil {
		return ""
	}
	return *p.TenantID
}
