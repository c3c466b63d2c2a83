package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/buildcrm/internal/api/middleware"
	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/model"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// withSession injects a resolved session into the request context.
func withSession(r *http.Request, s *core.Session) *http.Request {
	return r.WithContext(mw.WithSession(r.Context(), s))
}

// ownerSession returns an active client_owner session of tenant validTenantID.
func ownerSession(planID string) *core.Session {
	tenantID := validTenantID
	return &core.Session{
		Principal: &model.Principal{ID: validUserID, Role: model.RoleClientOwner, TenantID: &tenantID, Email: "owner@acme.test"},
		Tenant:    &model.Tenant{ID: tenantID, BusinessName: "Acme Builders", PlanID: planID, Active: true},
	}
}

func adminSession() *core.Session {
	return &core.Session{
		Principal: &model.Principal{ID: "admin-1", Role: model.RoleSuperAdmin, Email: "admin@buildcrm.test"},
	}
}

const (
	validTenantID = "tenant-1"
	validUserID   = "user-1"
	validID       = "test-id-1"
)
