package handler

import (
	"net/http"

	"github.com/edvin/buildcrm/internal/api/request"
	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/model"
)

// WhiteLabel serves tenant branding. The route itself is gated on the
// white_label feature; setting a custom domain also needs custom_domain.
type WhiteLabel struct {
	svc   *core.WhiteLabelService
	guard *core.Guard
}

func NewWhiteLabel(svc *core.WhiteLabelService, guard *core.Guard) *WhiteLabel {
	return &WhiteLabel{svc: svc, guard: guard}
}

type whiteLabelSavedResponse struct {
	Message  string            `json:"message"`
	Settings *model.WhiteLabel `json:"settings"`
}

// Get godoc
//
//	@Summary		Get white label settings
//	@Tags			White Label
//	@Security		BearerAuth
//	@Success		200	{object}	model.WhiteLabel
//	@Failure		403	{object}	response.ErrorResponse
//	@Router			/whitelabel [get]
func (h *WhiteLabel) Get(w http.ResponseWriter, r *http.Request) {
	session := requireTenantSession(w, r)
	if session == nil {
		return
	}

	settings, err := h.svc.Get(r.Context(), session.Tenant)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, settings)
}

// Update godoc
//
//	@Summary		Update white label settings
//	@Tags			White Label
//	@Security		BearerAuth
//	@Param			body	body		request.UpdateWhiteLabel	true	"Settings"
//	@Success		200		{object}	whiteLabelSavedResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Router			/whitelabel [put]
func (h *WhiteLabel) Update(w http.ResponseWriter, r *http.Request) {
	session := requireTenantSession(w, r)
	if session == nil {
		return
	}

	var req request.UpdateWhiteLabel
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := h.svc.Get(r.Context(), session.Tenant)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	if req.CustomDomain != nil && *req.CustomDomain != "" && *req.CustomDomain != current.CustomDomain {
		if err := h.guard.Authorize(r.Context(), session, core.PlanGated(model.FeatureCustomDomain)); err != nil {
			response.WriteServiceError(w, r, err)
			return
		}
	}

	merged := *current
	merged.TenantID = session.Tenant.ID
	setString(&merged.Logo, req.Logo)
	setString(&merged.Favicon, req.Favicon)
	setNonEmpty(&merged.PrimaryColor, req.PrimaryColor)
	setNonEmpty(&merged.SecondaryColor, req.SecondaryColor)
	setNonEmpty(&merged.CompanyName, req.CompanyName)
	setString(&merged.CustomDomain, req.CustomDomain)
	setString(&merged.CustomCSS, req.CustomCSS)
	if req.Enabled != nil {
		merged.Enabled = *req.Enabled
	}

	saved, err := h.svc.Save(r.Context(), &merged)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, whiteLabelSavedResponse{
		Message:  "White label settings updated",
		Settings: saved,
	})
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// setNonEmpty ignores empty values so colours and the company name always
// have something to show.
func setNonEmpty(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
