package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/buildcrm/internal/api/request"
	"github.com/edvin/buildcrm/internal/api/response"
	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/model"
)

// Users manages the members of the caller's client.
type Users struct {
	svc *core.UserService
}

func NewUsers(svc *core.UserService) *Users {
	return &Users{svc: svc}
}

// List godoc
//
//	@Summary		List users of the caller's client
//	@Tags			Users
//	@Security		BearerAuth
//	@Success		200	{array}	model.User
//	@Router			/users [get]
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	session := requireTenantSession(w, r)
	if session == nil {
		return
	}

	users, err := h.svc.List(r.Context(), session.Tenant.ID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, users)
}

// Create godoc
//
//	@Summary		Add a user to the caller's client
//	@Description	Fails once the plan's user limit is reached.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			body	body		request.CreateUser	true	"New user"
//	@Success		201		{object}	model.User
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/users [post]
func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	session := requireTenantSession(w, r)
	if session == nil {
		return
	}

	var req request.CreateUser
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Create(r.Context(), session.Tenant.ID, core.CreateUserParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, user)
}

func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	session := requireTenantSession(w, r)
	if session == nil {
		return
	}

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateUser
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := core.UpdateUserParams{Name: req.Name}
	if req.Role != nil {
		role := model.Role(*req.Role)
		params.Role = &role
	}

	user, err := h.svc.Update(r.Context(), session.Tenant.ID, id, params)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, user)
}

// Delete godoc
//
//	@Summary		Remove a user from the caller's client
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	response.MessageResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/users/{id} [delete]
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	session := requireTenantSession(w, r)
	if session == nil {
		return
	}

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), session.Principal, id); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, response.MessageResponse{Message: "User deleted successfully"})
}
