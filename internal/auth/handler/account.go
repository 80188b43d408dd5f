package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/internal/auth/repository"
	"github.com/pharmacare/pharmacare-backend/internal/auth/service"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// AccountHandler handles user and role endpoints
type AccountHandler struct {
	service *service.AccountService
	logger  *logger.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(svc *service.AccountService, log *logger.Logger) *AccountHandler {
	return &AccountHandler{
		service: svc,
		logger:  log,
	}
}

// ListUsers lists users
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage := httputil.Pagination(r)
	q := r.URL.Query()
	filter := repository.UserFilter{
		Search: q.Get("search"),
		RoleID: q.Get("role_id"),
	}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.Error(w, r, errors.ValidationField("active", "must be true or false"))
			return
		}
		filter.Active = &active
	}

	users, total, err := h.service.ListUsers(r.Context(), filter, page, perPage)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSONWithMeta(w, http.StatusOK, users, httputil.NewMeta(page, perPage, total))
}

// GetUser gets a user
func (h *AccountHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, user)
}

// CreateUser creates a user
func (h *AccountHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, user)
}

// UpdateUser updates a user
func (h *AccountHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateUserInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, user)
}

// DeleteUser deletes a user
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// ListRoles lists roles
func (h *AccountHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, roles)
}

// GetRole gets a role
func (h *AccountHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.GetRole(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, role)
}

// CreateRole creates a role
func (h *AccountHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req service.RoleInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	role, err := h.service.CreateRole(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, role)
}

// UpdateRole updates a role
func (h *AccountHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req service.RoleInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	role, err := h.service.UpdateRole(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, role)
}

// DeleteRole deletes a role
func (h *AccountHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRole(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}
