// Package handler exposes sign-in and account management over HTTP.
package handler

import (
	"net"
	"net/http"

	"github.com/pharmacare/pharmacare-backend/internal/auth/service"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	service *service.AuthService
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  log,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	res, err := h.service.Login(r.Context(), req, service.ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: remoteIP(r),
	})
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			h.logger.Warn().Str("ip", remoteIP(r)).Msg("failed login attempt")
		}
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, res)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, tokens)
}

// Logout revokes the session of the posted refresh token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	h.service.Logout(r.Context(), req.RefreshToken)
	httputil.NoContent(w)
}

// Me returns the current user's information
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	a := actor.FromContext(r.Context())
	if a == nil {
		httputil.Error(w, r, errors.Unauthorized("not authenticated"))
		return
	}

	user, err := h.service.Me(r.Context(), a.ID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, user)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
