package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/buildcrm/internal/events"
	"github.com/edvin/buildcrm/internal/model"
)

// TenantService reads and mutates tenant rows. Tenant state is always read
// from the database so activation changes apply to the next request.
type TenantService struct {
	db     DB
	events Publisher
}

// NewTenantService creates a new TenantService.
func NewTenantService(db DB, events Publisher) *TenantService {
	return &TenantService{db: db, events: events}
}

func (s *TenantService) Get(ctx context.Context, id string) (*model.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant %s: %w", id, err)
	}
	return t, nil
}

func (s *TenantService) List(ctx context.Context) ([]model.Tenant, error) {
	rows, err := s.db.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return tenants, nil
}

// ToggleActive flips a tenant between active and paused in a single
// statement and returns the updated row.
func (s *TenantService) ToggleActive(ctx context.Context, id string) (*model.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`UPDATE tenants SET active = NOT active, updated_at = now() WHERE id = $1 RETURNING `+tenantColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("toggle tenant %s: %w", id, err)
	}

	publish(ctx, s.events, events.TenantStatusChanged, map[string]any{
		"clientId": t.ID,
		"active":   t.Active,
	})
	return t, nil
}

func publish(ctx context.Context, p Publisher, subject string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, data); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
