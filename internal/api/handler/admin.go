package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/buildcrm/internal/api/request"
	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/model"
)

// Admin serves the platform administration endpoints.
type Admin struct {
	tenants      *core.TenantService
	entitlements *core.EntitlementService
	users        *core.UserService
	dashboard    *core.DashboardService
}

func NewAdmin(tenants *core.TenantService, entitlements *core.EntitlementService, users *core.UserService, dashboard *core.DashboardService) *Admin {
	return &Admin{tenants: tenants, entitlements: entitlements, users: users, dashboard: dashboard}
}

type toggleStatusResponse struct {
	Message   string `json:"message"`
	Active    bool   `json:"active"`
	NewStatus string `json:"newStatus"`
}

type changeSubscriptionResponse struct {
	Message string `json:"message"`
	PlanID  string `json:"planId"`
}

// Stats godoc
//
//	@Summary		Platform statistics
//	@Tags			Admin
//	@Security		BearerAuth
//	@Success		200	{object}	model.AdminStats
//	@Failure		403	{object}	response.ErrorResponse
//	@Router			/admin/stats [get]
func (h *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.AdminStats(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, stats)
}

// ListClients godoc
//
//	@Summary		List clients
//	@Tags			Admin
//	@Security		BearerAuth
//	@Success		200	{array}		model.Tenant
//	@Router			/admin/clients [get]
func (h *Admin) ListClients(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if tenants == nil {
		tenants = []model.Tenant{}
	}
	response.WriteJSON(w, http.StatusOK, tenants)
}

// GetClient godoc
//
//	@Summary		Client details with users and effective modules
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Client ID"
//	@Success		200	{object}	model.TenantDetail
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/admin/clients/{id} [get]
func (h *Admin) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	detail := model.TenantDetail{Tenant: *tenant}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		plan, err := h.entitlements.Plan(ctx, tenant.PlanID)
		detail.Plan = plan
		return err
	})
	g.Go(func() error {
		users, err := h.users.List(ctx, tenant.ID)
		detail.Users = users
		return err
	})
	g.Go(func() error {
		modules, err := h.entitlements.EffectiveModules(ctx, tenant.ID)
		detail.Modules = modules
		return err
	})
	if err := g.Wait(); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, detail)
}

// ToggleStatus godoc
//
//	@Summary		Pause or reactivate a client
//	@Description	Takes effect on the client's next request.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Client ID"
//	@Success		200	{object}	toggleStatusResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/admin/clients/{id}/toggle-status [post]
func (h *Admin) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := h.tenants.ToggleActive(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, toggleStatusResponse{
		Message:   "Status toggled",
		Active:    tenant.Active,
		NewStatus: tenant.SubscriptionStatus(),
	})
}

// ChangeSubscription godoc
//
//	@Summary		Move a client to another plan
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Client ID"
//	@Param			body	body		request.ChangeSubscription	true	"New plan"
//	@Success		200		{object}	changeSubscriptionResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/admin/clients/{id}/subscription [put]
func (h *Admin) ChangeSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.ChangeSubscription
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := h.entitlements.ChangePlan(r.Context(), id, req.PlanID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, changeSubscriptionResponse{
		Message: "Subscription updated successfully",
		PlanID:  tenant.PlanID,
	})
}
