package handler

import (
	"net/http"

	mw "github.com/edvin/buildcrm/internal/api/middleware"
	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
)

// requireTenantSession returns the caller's session for a route guarded by a
// tenant capability. It writes a 401 and returns nil if the session carries
// no tenant.
func requireTenantSession(w http.ResponseWriter, r *http.Request) *core.Session {
	s := mw.GetSession(r.Context())
	if s == nil || s.Principal == nil || s.Tenant == nil {
		response.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return s
}

func requireSession(w http.ResponseWriter, r *http.Request) *core.Session {
	s := mw.GetSession(r.Context())
	if s == nil || s.Principal == nil {
		response.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return s
}
