package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/buildcrm/internal/events"
	"github.com/edvin/buildcrm/internal/model"
	"github.com/edvin/buildcrm/internal/platform"
)

// LeadService ingests leads from external sources.
type LeadService struct {
	db     DB
	events Publisher
}

// NewLeadService creates a new LeadService.
func NewLeadService(db DB, events Publisher) *LeadService {
	return &LeadService{db: db, events: events}
}

// LeadInput is the contact data carried by a webhook.
type LeadInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Ingest stores a lead for the given tenant. The tenant is named explicitly
// by the caller since webhooks carry no token.
func (s *LeadService) Ingest(ctx context.Context, tenantID, source string, in LeadInput) (*model.Lead, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, validation("Client ID is required")
	}
	if source == "" {
		source = "website"
	}

	lead := &model.Lead{
		ID:       platform.NewID(),
		TenantID: tenantID,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Message:  in.Message,
		Source:   source,
		Status:   model.LeadStatusNew,
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO leads (id, tenant_id, name, email, phone, message, source, status)
		 SELECT $1, $2, $3, $4, $5, $6, $7, $8
		 WHERE EXISTS (SELECT 1 FROM tenants WHERE id = $2)
		 RETURNING created_at`,
		lead.ID, lead.TenantID, lead.Name, lead.Email, lead.Phone, lead.Message, lead.Source, lead.Status,
	).Scan(&lead.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}

	publish(ctx, s.events, events.LeadReceived, lead)
	return lead, nil
}
