package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// PeopleHandler handles employee and customer endpoints
type PeopleHandler struct {
	service *service.PeopleService
	logger  *logger.Logger
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(svc *service.PeopleService, log *logger.Logger) *PeopleHandler {
	return &PeopleHandler{
		service: svc,
		logger:  log,
	}
}

// ListEmployees lists employees, optionally of one branch
func (h *PeopleHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	items, total, err := h.service.ListEmployees(r.Context(), r.URL.Query().Get("branch_id"), params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// GetEmployee gets an employee by ID
func (h *PeopleHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, e)
}

// CreateEmployee creates an employee
func (h *PeopleHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req service.EmployeeInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	e, err := h.service.CreateEmployee(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, e)
}

// UpdateEmployee updates an employee
func (h *PeopleHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req service.EmployeeInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	e, err := h.service.UpdateEmployee(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, e)
}

// DeleteEmployee deletes an employee
func (h *PeopleHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// ListCustomers lists customers
func (h *PeopleHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	items, total, err := h.service.ListCustomers(r.Context(), params)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	list(w, params, items, total)
}

// GetCustomer gets a customer by ID
func (h *PeopleHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, c)
}

// CreateCustomer creates a customer
func (h *PeopleHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req service.CustomerInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	c, err := h.service.CreateCustomer(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, c)
}

// UpdateCustomer updates a customer
func (h *PeopleHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req service.CustomerInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	c, err := h.service.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, c)
}

// DeleteCustomer deletes a customer
func (h *PeopleHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.NoContent(w)
}
