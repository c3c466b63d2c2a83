package handler

import (
	"net/http"

	"github.com/edvin/buildcrm/internal/api/request"
	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/model"
)

type Auth struct {
	svc *core.IdentityService
}

func NewAuth(svc *core.IdentityService) *Auth {
	return &Auth{svc: svc}
}

type authResponse struct {
	Token  string        `json:"token"`
	User   *model.User   `json:"user"`
	Client *model.Tenant `json:"client"`
}

type meResponse struct {
	User   *model.User   `json:"user"`
	Client *model.Tenant `json:"client"`
}

// Register godoc
//
//	@Summary		Register a new client account
//	@Description	Creates the client and its owner user and returns a bearer token for the owner.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		request.Register	true	"Sign-up details"
//	@Success		200		{object}	authResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/auth/register [post]
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req request.Register
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Register(r.Context(), core.RegisterParams{
		BusinessName: req.BusinessName,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		PlanID:       req.PlanID,
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, authResponse{Token: res.Token, User: res.User, Client: res.Tenant})
}

// Login godoc
//
//	@Summary		Log in with email and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		request.Login	true	"Credentials"
//	@Success		200		{object}	authResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Router			/auth/login [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req request.Login
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, authResponse{Token: res.Token, User: res.User, Client: res.Tenant})
}

// Me godoc
//
//	@Summary		Current user and client
//	@Description	Available to members of paused clients so the UI can show the account state.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		200	{object}	meResponse
//	@Failure		401	{object}	response.ErrorResponse
//	@Router			/auth/me [get]
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	user, err := h.svc.Me(r.Context(), session)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, meResponse{User: user, Client: session.Tenant})
}
