package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/buildcrm/internal/events"
	"github.com/edvin/buildcrm/internal/model"
)

// CatalogCache stores encoded catalog entries. Implemented by cache.Cache.
type CatalogCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Clear()
}

// EntitlementService answers which plan a tenant is on and which modules
// it may use. Plans and modules are a static catalog and may be cached;
// tenant rows and module request state are always read live.
type EntitlementService struct {
	db     DB
	cache  CatalogCache
	events Publisher
}

// NewEntitlementService creates a new EntitlementService. cache may be nil.
func NewEntitlementService(db DB, cache CatalogCache, events Publisher) *EntitlementService {
	return &EntitlementService{db: db, cache: cache, events: events}
}

func (s *EntitlementService) cached(key string, v any) bool {
	if s.cache == nil {
		return false
	}
	data, ok := s.cache.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (s *EntitlementService) store(key string, v any) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		s.cache.Set(key, data)
	}
}

// Plans returns the plan catalog ordered from cheapest to most expensive.
func (s *EntitlementService) Plans(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	if s.cached("plans", &plans) {
		return plans, nil
	}

	rows, err := s.db.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY price, sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}

	s.store("plans", plans)
	return plans, nil
}

func (s *EntitlementService) Plan(ctx context.Context, id string) (*model.Plan, error) {
	var cached model.Plan
	if s.cached("plan:"+id, &cached) {
		return &cached, nil
	}

	p, err := scanPlan(s.db.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("plan %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}

	s.store("plan:"+id, p)
	return p, nil
}

// PlanOf returns the current plan of a tenant.
func (s *EntitlementService) PlanOf(ctx context.Context, tenantID string) (*model.Plan, error) {
	var planID string
	err := s.db.QueryRow(ctx, `SELECT plan_id FROM tenants WHERE id = $1`, tenantID).Scan(&planID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get plan of tenant %s: %w", tenantID, err)
	}
	return s.Plan(ctx, planID)
}

// QualifyingPlan returns the cheapest plan granting feature f.
func (s *EntitlementService) QualifyingPlan(ctx context.Context, f model.Feature) (*model.Plan, error) {
	plans, err := s.Plans(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].Grants(f) {
			return &plans[i], nil
		}
	}
	return nil, notFound("no plan grants %s", f)
}

// EffectiveModules returns the union of the tenant's plan base modules and
// every module granted by an approved request, sorted by ID.
func (s *EntitlementService) EffectiveModules(ctx context.Context, tenantID string) ([]string, error) {
	plan, err := s.PlanOf(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(plan.BaseModules))
	for _, m := range plan.BaseModules {
		set[m] = struct{}{}
	}

	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT module_id FROM module_requests WHERE tenant_id = $1 AND status = 'approved'`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list approved modules for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan approved module: %w", err)
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approved modules: %w", err)
	}

	modules := make([]string, 0, len(set))
	for id := range set {
		modules = append(modules, id)
	}
	sort.Strings(modules)
	return modules, nil
}

// TenantModules resolves the tenant's effective modules to catalog entries.
func (s *EntitlementService) TenantModules(ctx context.Context, tenantID string) ([]model.EnabledModule, error) {
	ids, err := s.EffectiveModules(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	all, err := s.Modules(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Module, len(all))
	for _, m := range all {
		byID[m.ID] = m
	}

	out := make([]model.EnabledModule, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			m = model.Module{ID: id, Name: id}
		}
		out = append(out, model.EnabledModule{Module: m, Enabled: true})
	}
	return out, nil
}

// Modules returns the full module catalog.
func (s *EntitlementService) Modules(ctx context.Context) ([]model.Module, error) {
	var modules []model.Module
	if s.cached("modules", &modules) {
		return modules, nil
	}

	rows, err := s.db.Query(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}

	s.store("modules", modules)
	return modules, nil
}

// PublicModules returns the modules visible before sign-up.
func (s *EntitlementService) PublicModules(ctx context.Context) ([]model.Module, error) {
	all, err := s.Modules(ctx)
	if err != nil {
		return nil, err
	}
	public := make([]model.Module, 0, len(all))
	for _, m := range all {
		if m.Public {
			public = append(public, m)
		}
	}
	return public, nil
}

func (s *EntitlementService) Module(ctx context.Context, id string) (*model.Module, error) {
	m, err := scanModule(s.db.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("module not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get module %s: %w", id, err)
	}
	return m, nil
}

// ChangePlan moves a tenant to another plan. Approved module requests are
// left untouched, so modules granted that way survive a downgrade.
func (s *EntitlementService) ChangePlan(ctx context.Context, tenantID, planID string) (*model.Tenant, error) {
	if _, err := s.Plan(ctx, planID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, validation("unknown plan %q", planID)
		}
		return nil, err
	}

	t, err := scanTenant(s.db.QueryRow(ctx,
		`UPDATE tenants SET plan_id = $2, updated_at = now() WHERE id = $1 RETURNING `+tenantColumns,
		tenantID, planID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("change plan of tenant %s: %w", tenantID, err)
	}

	publish(ctx, s.events, events.TenantPlanChanged, map[string]any{
		"clientId": t.ID,
		"planId":   t.PlanID,
	})
	return t, nil
}

// SeedCatalog upserts plans and modules in one transaction and drops any
// cached catalog entries.
func (s *EntitlementService) SeedCatalog(ctx context.Context, plans []model.Plan, modules []model.Module) error {
	err := inTx(ctx, s.db, func(db DB) error {
		return upsertCatalog(ctx, db, plans, modules)
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Clear()
	}
	return nil
}

func upsertCatalog(ctx context.Context, db DB, plans []model.Plan, modules []model.Module) error {
	for _, m := range modules {
		_, err := db.Exec(ctx,
			`INSERT INTO modules (`+moduleColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
			 price = EXCLUDED.price, icon = EXCLUDED.icon, public = EXCLUDED.public`,
			m.ID, m.Name, m.Description, m.Price, m.Icon, m.Public)
		if err != nil {
			return fmt.Errorf("upsert module %s: %w", m.ID, err)
		}
	}

	for _, p := range plans {
		features := p.Features
		if features == nil {
			features = []string{}
		}
		baseModules := p.BaseModules
		if baseModules == nil {
			baseModules = []string{}
		}
		billing := p.BillingCycle
		if billing == "" {
			billing = "monthly"
		}
		_, err := db.Exec(ctx,
			`INSERT INTO plans (`+planColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price,
			 billing_cycle = EXCLUDED.billing_cycle, user_limit = EXCLUDED.user_limit, features = EXCLUDED.features,
			 base_modules = EXCLUDED.base_modules, allows_white_label = EXCLUDED.allows_white_label,
			 allows_custom_domain = EXCLUDED.allows_custom_domain, sort_order = EXCLUDED.sort_order`,
			p.ID, p.Name, p.Price, billing, p.UserLimit, features, baseModules,
			p.AllowsWhiteLabel, p.AllowsCustomDomain, p.SortOrder)
		if err != nil {
			return fmt.Errorf("upsert plan %s: %w", p.ID, err)
		}
	}
	return nil
}
