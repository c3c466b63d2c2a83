package core

import "time"

// Services bundles every service the API needs.
type Services struct {
	Identity      *IdentityService
	Guard         *Guard
	Entitlement   *EntitlementService
	ModuleRequest *ModuleRequestService
	Tenant        *TenantService
	User          *UserService
	WhiteLabel    *WhiteLabelService
	Lead          *LeadService
	Dashboard     *DashboardService
}

// ServicesConfig carries the settings services are built from.
type ServicesConfig struct {
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
}

func NewServices(db DB, cache CatalogCache, events Publisher, cfg ServicesConfig) (*Services, error) {
	entitlement := NewEntitlementService(db, cache, events)
	tenant := NewTenantService(db, events)

	guard, err := NewGuard(entitlement)
	if err != nil {
		return nil, err
	}

	return &Services{
		Identity:      NewIdentityService(db, tenant, entitlement, events, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		Guard:         guard,
		Entitlement:   entitlement,
		ModuleRequest: NewModuleRequestService(db, entitlement, events),
		Tenant:        tenant,
		User:          NewUserService(db, entitlement),
		WhiteLabel:    NewWhiteLabelService(db),
		Lead:          NewLeadService(db, events),
		Dashboard:     NewDashboardService(db),
	}, nil
}
