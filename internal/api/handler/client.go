package handler

import (
	"net/http"

	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
)

// Client serves the tenant dashboard endpoints.
type Client struct {
	entitlements *core.EntitlementService
	dashboard    *core.DashboardService
}

func NewClient(entitlements *core.EntitlementService, dashboard *core.DashboardService) *Client {
	return &Client{entitlements: entitlements, dashboard: dashboard}
}

// Stats godoc
//
//	@Summary		Dashboard statistics for the caller's client
//	@Tags			Client
//	@Security		BearerAuth
//	@Success		200	{object}	model.ClientStats
//	@Router			/client/stats [get]
func (h *Client) Stats(w http.ResponseWriter, r *http.Request) {
	session := requireTenantSession(w, r)
	if session == nil {
		return
	}

	stats, err := h.dashboard.ClientStats(r.Context(), session.Tenant.ID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, stats)
}

// Modules godoc
//
//	@Summary		Modules enabled for the caller's client
//	@Description	Plan base modules plus approved module requests.
//	@Tags			Client
//	@Security		BearerAuth
//	@Success		200	{array}	model.EnabledModule
//	@Router			/client/modules [get]
func (h *Client) Modules(w http.ResponseWriter, r *http.Request) {
	session := requireTenantSession(w, r)
	if session == nil {
		return
	}

	modules, err := h.entitlements.TenantModules(r.Context(), session.Tenant.ID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, modules)
}
