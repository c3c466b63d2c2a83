package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/buildcrm/internal/model"
)

// WhiteLabelService stores per-tenant branding. Plan checks happen in the
// guard before these methods are reached.
type WhiteLabelService struct {
	db DB
}

// NewWhiteLabelService creates a new WhiteLabelService.
func NewWhiteLabelService(db DB) *WhiteLabelService {
	return &WhiteLabelService{db: db}
}

const whiteLabelColumns = `tenant_id, logo, favicon, primary_color, secondary_color, company_name, custom_domain, custom_css, enabled, updated_at`

// Get returns the stored settings or the defaults when none exist.
func (s *WhiteLabelService) Get(ctx context.Context, tenant *model.Tenant) (*model.WhiteLabel, error) {
	var w model.WhiteLabel
	err := s.db.QueryRow(ctx, `SELECT `+whiteLabelColumns+` FROM whitelabel_settings WHERE tenant_id = $1`, tenant.ID).Scan(
		&w.TenantID, &w.Logo, &w.Favicon, &w.PrimaryColor, &w.SecondaryColor,
		&w.CompanyName, &w.CustomDomain, &w.CustomCSS, &w.Enabled, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DefaultWhiteLabel(tenant.ID, tenant.BusinessName), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get whitelabel for tenant %s: %w", tenant.ID, err)
	}
	return &w, nil
}

// Save upserts the tenant's settings.
func (s *WhiteLabelService) Save(ctx context.Context, w *model.WhiteLabel) (*model.WhiteLabel, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO whitelabel_settings (`+whiteLabelColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		 ON CONFLICT (tenant_id) DO UPDATE SET logo = EXCLUDED.logo, favicon = EXCLUDED.favicon,
		 primary_color = EXCLUDED.primary_color, secondary_color = EXCLUDED.secondary_color,
		 company_name = EXCLUDED.company_name, custom_domain = EXCLUDED.custom_domain,
		 custom_css = EXCLUDED.custom_css, enabled = EXCLUDED.enabled, updated_at = now()
		 RETURNING updated_at`,
		w.TenantID, w.Logo, w.Favicon, w.PrimaryColor, w.SecondaryColor,
		w.CompanyName, w.CustomDomain, w.CustomCSS, w.Enabled,
	).Scan(&w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save whitelabel for tenant %s: %w", w.TenantID, err)
	}
	return w, nil
}
