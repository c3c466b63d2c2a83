package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/edvin/buildcrm/internal/events"
	"github.com/edvin/buildcrm/internal/model"
	"github.com/edvin/buildcrm/internal/platform"
)

var moduleRequestsDecided = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "module_requests_decided_total",
		Help: "Module requests moved out of pending, by resulting status",
	},
	[]string{"status"},
)

// ModuleCatalog is the module lookup used when creating requests.
type ModuleCatalog interface {
	Module(ctx context.Context, id string) (*model.Module, error)
}

// ModuleRequestService runs the module request workflow:
// pending -> approved | rejected, each request decided at most once.
type ModuleRequestService struct {
	db      DB
	modules ModuleCatalog
	events  Publisher
}

// NewModuleRequestService creates a new ModuleRequestService.
func NewModuleRequestService(db DB, modules ModuleCatalog, events Publisher) *ModuleRequestService {
	return &ModuleRequestService{db: db, modules: modules, events: events}
}

// Create files a new pending request for the principal's tenant. Requests
// are never deduplicated; every call creates a new record.
func (s *ModuleRequestService) Create(ctx context.Context, p *model.Principal, moduleID, message string) (*model.ModuleRequest, error) {
	if p == nil || p.Role != model.RoleClientOwner || p.TenantID == nil {
		return nil, forbidden("Only the account owner can request modules")
	}
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return nil, validation("Module ID is required")
	}

	module, err := s.modules.Module(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	req := &model.ModuleRequest{
		ID:          platform.NewID(),
		TenantID:    *p.TenantID,
		ModuleID:    module.ID,
		RequestedBy: p.ID,
		Message:     message,
		Status:      model.StatusPending,
		ModuleName:  module.Name,
		ModulePrice: module.Price,
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO module_requests (id, tenant_id, module_id, requested_by, message, status)
		 VALUES ($1, $2, $3, $4, $5, 'pending')
		 RETURNING created_at, updated_at`,
		req.ID, req.TenantID, req.ModuleID, req.RequestedBy, req.Message,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert module request: %w", err)
	}

	publish(ctx, s.events, events.ModuleRequestCreated, req)
	return req, nil
}

const listModuleRequestsQuery = `SELECT r.id, r.tenant_id, r.module_id, r.requested_by, r.message, r.status, r.admin_message,
	r.decided_by, r.created_at, r.decided_at, r.updated_at, t.business_name, m.name, m.price
	FROM module_requests r
	JOIN tenants t ON t.id = r.tenant_id
	JOIN modules m ON m.id = r.module_id`

// List returns requests newest first. Super admins see every tenant; any
// other principal sees only its own tenant.
func (s *ModuleRequestService) List(ctx context.Context, p *model.Principal) ([]model.ModuleRequest, error) {
	if p == nil {
		return nil, unauthenticated("authentication required")
	}

	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case p.IsSuperAdmin():
		rows, err = s.db.Query(ctx, listModuleRequestsQuery+` ORDER BY r.created_at DESC`)
	case p.TenantID != nil:
		rows, err = s.db.Query(ctx, listModuleRequestsQuery+` WHERE r.tenant_id = $1 ORDER BY r.created_at DESC`, *p.TenantID)
	default:
		return nil, forbidden("This action requires a client account")
	}
	if err != nil {
		return nil, fmt.Errorf("list module requests: %w", err)
	}
	defer rows.Close()

	var out []model.ModuleRequest
	for rows.Next() {
		var r model.ModuleRequest
		err := rows.Scan(&r.ID, &r.TenantID, &r.ModuleID, &r.RequestedBy, &r.Message, &r.Status, &r.AdminMessage,
			&r.DecidedBy, &r.CreatedAt, &r.DecidedAt, &r.UpdatedAt, &r.ClientName, &r.ModuleName, &r.ModulePrice)
		if err != nil {
			return nil, fmt.Errorf("scan module request: %w", err)
		}
		if !p.IsSuperAdmin() && r.TenantID != *p.TenantID {
			continue
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate module requests: %w", err)
	}
	return out, nil
}

// Decide approves or rejects a pending request. The status change is a
// single conditional UPDATE, so of two concurrent decisions exactly one
// succeeds and the other gets ErrAlreadyDecided. An approval is visible to
// the next EffectiveModules read.
func (s *ModuleRequestService) Decide(ctx context.Context, p *model.Principal, requestID, action, adminMessage string) (*model.ModuleRequest, error) {
	if !p.IsSuperAdmin() {
		return nil, forbidden("Super admin access required")
	}
	if requestID == "" {
		return nil, validation("Request ID is required")
	}

	var status string
	switch action {
	case model.ActionApprove:
		status = model.StatusApproved
	case model.ActionReject:
		status = model.StatusRejected
	default:
		return nil, validation("Invalid action. Must be approve or reject")
	}

	req, err := scanModuleRequest(s.db.QueryRow(ctx,
		`UPDATE module_requests
		 SET status = $2, admin_message = $3, decided_by = $4, decided_at = now(), updated_at = now()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+moduleRequestColumns,
		requestID, status, adminMessage, p.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.undecidable(ctx, requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("decide module request %s: %w", requestID, err)
	}

	moduleRequestsDecided.WithLabelValues(req.Status).Inc()
	publish(ctx, s.events, events.ModuleRequestDecided, req)
	return req, nil
}

// undecidable explains why the conditional update matched no row.
func (s *ModuleRequestService) undecidable(ctx context.Context, requestID string) error {
	var current string
	err := s.db.QueryRow(ctx, `SELECT status FROM module_requests WHERE id = $1`, requestID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound("Module request not found")
	}
	if err != nil {
		return fmt.Errorf("get module request %s: %w", requestID, err)
	}
	return ErrAlreadyDecided
}
