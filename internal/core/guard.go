package core

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/edvin/buildcrm/internal/model"
)

//go:embed guard_model.conf
var guardModel string

var authzDenials = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authz_denials_total",
		Help: "Authorization denials by capability and kind",
	},
	[]string{"capability", "kind"},
)

// Role groups checked through the enforcer.
const (
	scopeAny    = "any"
	scopeAdmin  = "admin"
	scopeTenant = "tenant"
	scopeOwner  = "owner"
	accessAct   = "access"
)

// rolePolicies grant each role its scopes. client_owner inherits tenant_user.
var rolePolicies = [][]string{
	{string(model.RoleSuperAdmin), scopeAny, accessAct},
	{string(model.RoleSuperAdmin), scopeAdmin, accessAct},
	{string(model.RoleTenantUser), scopeAny, accessAct},
	{string(model.RoleTenantUser), scopeTenant, accessAct},
	{string(model.RoleClientOwner), scopeOwner, accessAct},
}

// Capability is an authorization requirement attached to an endpoint. The
// set is closed: use the package-level values and PlanGated.
type Capability struct {
	name          string
	scope         string
	allowInactive bool
	feature       model.Feature
}

func (c Capability) String() string { return c.name }

// IsPublic reports whether c admits requests without a token.
func (c Capability) IsPublic() bool { return c.scope == "" }

var (
	// Public needs no token.
	Public = Capability{name: "public"}
	// StatusRead admits any principal, including members of a paused tenant.
	StatusRead = Capability{name: "status_read", scope: scopeAny, allowInactive: true}
	// Authenticated admits any principal of an active tenant and super admins.
	Authenticated = Capability{name: "authenticated", scope: scopeAny}
	AdminOnly     = Capability{name: "admin_only", scope: scopeAdmin}
	// TenantScoped admits tenant principals; results are filtered to their tenant.
	TenantScoped = Capability{name: "tenant_scoped", scope: scopeTenant}
	OwnerOnly    = Capability{name: "owner_only", scope: scopeOwner}
)

// PlanGated admits tenant principals whose current plan grants f.
func PlanGated(f model.Feature) Capability {
	return Capability{name: "plan_gated:" + string(f), scope: scopeTenant, feature: f}
}

// PlanCatalog is the plan lookup the guard needs.
type PlanCatalog interface {
	Plan(ctx context.Context, id string) (*model.Plan, error)
	QualifyingPlan(ctx context.Context, f model.Feature) (*model.Plan, error)
}

// Guard is the single place where endpoint capabilities are checked.
type Guard struct {
	enforcer *casbin.SyncedEnforcer
	plans    PlanCatalog
}

// NewGuard builds the role enforcer from the embedded model.
func NewGuard(plans PlanCatalog) (*Guard, error) {
	m, err := casbinmodel.NewModelFromString(guardModel)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	if _, err := enforcer.AddPolicies(rolePolicies); err != nil {
		return nil, fmt.Errorf("add role policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicy(string(model.RoleClientOwner), string(model.RoleTenantUser)); err != nil {
		return nil, fmt.Errorf("add role inheritance: %w", err)
	}

	return &Guard{enforcer: enforcer, plans: plans}, nil
}

// Authorize decides whether session satisfies c. Checks run in a fixed
// order: authentication and tenant activity, then role, then plan.
func (g *Guard) Authorize(ctx context.Context, session *Session, c Capability) error {
	err := g.authorize(ctx, session, c)
	if err != nil {
		authzDenials.WithLabelValues(c.name, string(KindOf(err))).Inc()
	}
	return err
}

func (g *Guard) authorize(ctx context.Context, session *Session, c Capability) error {
	if c.scope == "" {
		return nil
	}

	if session == nil || session.Principal == nil {
		return unauthenticated("authentication required")
	}
	p := session.Principal

	if p.TenantID != nil {
		if session.Tenant == nil || session.Tenant.ID != *p.TenantID {
			return unauthenticated("authentication required")
		}
		if !session.Tenant.Active && !c.allowInactive {
			return forbidden("Your account is paused. Please contact support to reactivate it.")
		}
	}

	ok, err := g.enforcer.Enforce(string(p.Role), c.scope, accessAct)
	if err != nil {
		return fmt.Errorf("enforce %s for %s: %w", c.name, p.Role, err)
	}
	if !ok {
		return forbidden("%s", roleDenial(c.scope))
	}

	if c.feature == "" {
		return nil
	}

	plan, err := g.plans.Plan(ctx, session.Tenant.PlanID)
	if err != nil {
		return fmt.Errorf("load plan %s: %w", session.Tenant.PlanID, err)
	}
	if plan.Grants(c.feature) {
		return nil
	}

	tier := "a higher plan"
	if q, err := g.plans.QualifyingPlan(ctx, c.feature); err == nil {
		tier = q.Name
	}
	return forbidden("%s is not available on your plan. Upgrade to %s.", featureLabel(c.feature), tier)
}

func roleDenial(scope string) string {
	switch scope {
	case scopeAdmin:
		return "Super admin access required"
	case scopeOwner:
		return "Only the account owner can perform this action"
	case scopeTenant:
		return "This action requires a client account"
	}
	return "Access denied"
}

func featureLabel(f model.Feature) string {
	switch f {
	case model.FeatureWhiteLabel:
		return "White labeling"
	case model.FeatureCustomDomain:
		return "Custom domain"
	}
	return string(f)
}
