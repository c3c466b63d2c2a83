package handler

import (
	"net/http"

	"github.com/edvin/buildcrm/internal/api/request"
	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/model"
)

type ModuleRequest struct {
	svc *core.ModuleRequestService
}

func NewModuleRequest(svc *core.ModuleRequestService) *ModuleRequest {
	return &ModuleRequest{svc: svc}
}

type createModuleRequestResponse struct {
	Message string               `json:"message"`
	Request *model.ModuleRequest `json:"request"`
}

type decideModuleRequestResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Create godoc
//
//	@Summary		Request an add-on module
//	@Tags			Module Requests
//	@Security		BearerAuth
//	@Param			body	body		request.CreateModuleRequest	true	"Module to request"
//	@Success		201		{object}	createModuleRequestResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/module-requests [post]
func (h *ModuleRequest) Create(w http.ResponseWriter, r *http.Request) {
	session := requireTenantSession(w, r)
	if session == nil {
		return
	}

	var req request.CreateModuleRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	mr, err := h.svc.Create(r.Context(), session.Principal, req.ModuleID, req.Message)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, createModuleRequestResponse{
		Message: "Module request submitted successfully",
		Request: mr,
	})
}

// List godoc
//
//	@Summary		List module requests
//	@Description	Admins see every request, client users only their own client's.
//	@Tags			Module Requests
//	@Security		BearerAuth
//	@Success		200	{array}	model.ModuleRequest
//	@Router			/module-requests [get]
func (h *ModuleRequest) List(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	requests, err := h.svc.List(r.Context(), session.Principal)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if requests == nil {
		requests = []model.ModuleRequest{}
	}
	response.WriteJSON(w, http.StatusOK, requests)
}

// Decide godoc
//
//	@Summary		Approve or reject a pending module request
//	@Tags			Module Requests
//	@Security		BearerAuth
//	@Param			body	body		request.DecideModuleRequest	true	"Decision"
//	@Success		200		{object}	decideModuleRequestResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/module-requests [put]
func (h *ModuleRequest) Decide(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	var req request.DecideModuleRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	mr, err := h.svc.Decide(r.Context(), session.Principal, req.RequestID, req.Action, req.AdminMessage)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, decideModuleRequestResponse{
		Message: "Module request " + mr.Status,
		Status:  mr.Status,
	})
}
