package handler

import (
	"net/http"

	"github.com/edvin/buildcrm/internal/api/request"
	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
)

type Webhook struct {
	leads *core.LeadService
}

func NewWebhook(leads *core.LeadService) *Webhook {
	return &Webhook{leads: leads}
}

type leadReceivedResponse struct {
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
}

// Leads godoc
//
//	@Summary		Ingest a lead from an external form
//	@Description	Unauthenticated. The client is named in the body.
//	@Tags			Webhooks
//	@Accept			json
//	@Param			body	body		request.LeadWebhook	true	"Lead"
//	@Success		200		{object}	leadReceivedResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/webhook/leads [post]
func (h *Webhook) Leads(w http.ResponseWriter, r *http.Request) {
	var req request.LeadWebhook
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := h.leads.Ingest(r.Context(), req.ClientID, req.Source, core.LeadInput{
		Name:    req.LeadData.Name,
		Email:   req.LeadData.Email,
		Phone:   req.LeadData.Phone,
		Message: req.LeadData.Message,
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, leadReceivedResponse{Message: "Lead received", LeadID: lead.ID})
}
