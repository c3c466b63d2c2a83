package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/edvin/buildcrm/internal/platform"
)

// AuditStore is the write side of the audit_logs table.
type AuditStore interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// AuditLogger is an async audit log writer.
type AuditLogger struct {
	store  AuditStore
	logger zerolog.Logger
	ch     chan auditEntry
	done   chan struct{}
}

type auditEntry struct {
	PrincipalID  *string
	TenantID     *string
	Method       string
	Path         string
	ResourceType *string
	ResourceID   *string
	StatusCode   int
	RequestBody  json.RawMessage
}

func NewAuditLogger(store AuditStore, logger zerolog.Logger) *AuditLogger {
	al := &AuditLogger{
		store:  store,
		logger: logger,
		ch:     make(chan auditEntry, 1024),
		done:   make(chan struct{}),
	}
	go al.drain()
	return al
}

func (al *AuditLogger) drain() {
	defer close(al.done)
	for entry := range al.ch {
		_, err := al.store.Exec(
			context.Background(),
			`INSERT INTO audit_logs (principal_id, tenant_id, method, path, resource_type, resource_id, status_code, request_body, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
			entry.PrincipalID, entry.TenantID, entry.Method, entry.Path, entry.ResourceType, entry.ResourceID,
			entry.StatusCode, entry.RequestBody,
		)
		if err != nil {
			al.logger.Error().Err(err).Msg("failed to write audit log")
		}
	}
}

// Close stops accepting entries and waits until the buffered ones are written.
func (al *AuditLogger) Close() {
	close(al.ch)
	<-al.done
}

// Middleware returns a chi middleware that logs mutating API requests. It
// must run after Authenticate so the session is visible.
func (al *AuditLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		var bodyBytes []byte
		if r.Body != nil {
			bodyBytes, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		resourceType, resourceID := extractResource(r.URL.Path)

		var principalID, tenantID *string
		if s := GetSession(r.Context()); s != nil && s.Principal != nil {
			id := s.Principal.ID
			principalID = &id
			tenantID = s.Principal.TenantID
		}

		var sanitizedBody json.RawMessage
		if len(bodyBytes) > 0 && json.Valid(bodyBytes) {
			sanitizedBody = sanitizeBody(bodyBytes)
		}

		select {
		case al.ch <- auditEntry{
			PrincipalID:  principalID,
			TenantID:     tenantID,
			Method:       r.Method,
			Path:         r.URL.Path,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			StatusCode:   sw.status,
			RequestBody:  sanitizedBody,
		}:
		default:
			al.logger.Warn().Msg("audit log buffer full, dropping entry")
		}
	})
}

// extractResource returns the last collection segment before the first ID
// in path, and that ID.
//
//	/module-requests                        -> module-requests
//	/users/{id}                             -> users, id
//	/admin/clients/{id}/toggle-status       -> clients, id
func extractResource(path string) (*string, *string) {
	var resourceType, resourceID *string
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		p := part
		if platform.IsID(p) {
			if resourceID == nil {
				resourceID = &p
			}
			continue
		}
		if resourceID == nil {
			resourceType = &p
		}
	}
	return resourceType, resourceID
}

// sensitiveFields are redacted from audit logs.
var sensitiveFields = map[string]bool{
	"password": true, "token": true, "secret": true, "passwordHash": true,
}

func sanitizeBody(body []byte) json.RawMessage {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}
	for k := range data {
		if sensitiveFields[k] {
			data[k] = "[REDACTED]"
		}
	}
	sanitized, _ := json.Marshal(data)
	return sanitized
}
