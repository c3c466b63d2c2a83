package handler

import (
	"net/http"

	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/model"
)

type Catalog struct {
	svc *core.EntitlementService
}

func NewCatalog(svc *core.EntitlementService) *Catalog {
	return &Catalog{svc: svc}
}

// Plans godoc
//
//	@Summary		List subscription plans
//	@Tags			Catalog
//	@Success		200	{array}		model.Plan
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/plans [get]
func (h *Catalog) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.Plans(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if plans == nil {
		plans = []model.Plan{}
	}
	response.WriteJSON(w, http.StatusOK, plans)
}

// PublicModules godoc
//
//	@Summary		List modules shown before sign-up
//	@Tags			Catalog
//	@Success		200	{array}		model.Module
//	@Router			/modules/public [get]
func (h *Catalog) PublicModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.svc.PublicModules(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, modules)
}

// AllModules returns the full catalog to platform admins.
func (h *Catalog) AllModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.svc.Modules(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if modules == nil {
		modules = []model.Module{}
	}
	response.WriteJSON(w, http.StatusOK, modules)
}
