package handler

import (
	"net/http"

	"github.com/edvin/buildcrm/internal/api/response"
)

type Health struct{}

func NewHealth() *Health {
	return &Health{}
}

type healthResponse struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Features []string `json:"features"`
}

var apiFeatures = []string{
	"multi-tenant",
	"module-requests",
	"plan-gating",
	"white-label",
	"lead-webhooks",
}

// Index godoc
//
//	@Summary		API status
//	@Tags			Health
//	@Success		200	{object}	healthResponse
//	@Router			/ [get]
func (h *Health) Index(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, healthResponse{
		Status:   "running",
		Message:  "BuildCRM API v1.0",
		Features: apiFeatures,
	})
}
