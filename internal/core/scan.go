package core

import (
	"github.com/jackc/pgx/v5"

	"github.com/edvin/buildcrm/internal/model"
)

const tenantColumns = `id, business_name, email, phone, plan_id, active, subscription_start_date, subscription_end_date, created_at, updated_at`

func scanTenant(row pgx.Row) (*model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(&t.ID, &t.BusinessName, &t.Email, &t.Phone, &t.PlanID, &t.Active,
		&t.SubscriptionStartDate, &t.SubscriptionEndDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const userColumns = `id, tenant_id, email, password_hash, name, role, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

const planColumns = `id, name, price, billing_cycle, user_limit, features, base_modules, allows_white_label, allows_custom_domain, sort_order`

func scanPlan(row pgx.Row) (*model.Plan, error) {
	var p model.Plan
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.BillingCycle, &p.UserLimit, &p.Features, &p.BaseModules,
		&p.AllowsWhiteLabel, &p.AllowsCustomDomain, &p.SortOrder)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const moduleColumns = `id, name, description, price, icon, public`

func scanModule(row pgx.Row) (*model.Module, error) {
	var m model.Module
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Icon, &m.Public); err != nil {
		return nil, err
	}
	return &m, nil
}

const moduleRequestColumns = `id, tenant_id, module_id, requested_by, message, status, admin_message, decided_by, created_at, decided_at, updated_at`

func scanModuleRequest(row pgx.Row) (*model.ModuleRequest, error) {
	var r model.ModuleRequest
	err := row.Scan(&r.ID, &r.TenantID, &r.ModuleID, &r.RequestedBy, &r.Message, &r.Status,
		&r.AdminMessage, &r.DecidedBy, &r.CreatedAt, &r.DecidedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
