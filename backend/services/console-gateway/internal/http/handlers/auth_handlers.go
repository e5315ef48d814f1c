package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bootstrapbugz/backend/libs/clients"
	"bootstrapbugz/backend/libs/models"
)

const authUnavailable = "auth service unavailable"

// sessionHeaders are relayed from the backend login response to the browser.
var sessionHeaders = []string{"Authorization", "Refresh-Token"}

// AuthHandlers proxies authentication lifecycle endpoints.
type AuthHandlers struct {
	client *clients.AuthService
	logger *zap.Logger
}

// NewAuthHandlers returns handler struct.
func NewAuthHandlers(client *clients.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{client: client, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeValid(w, r, &req) {
		return
	}
	resp, err := h.client.Login(req).Do(r.Context())
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	for _, name := range sessionHeaders {
		if v := resp.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}
	writeRaw(w, resp.StatusCode, resp.Body)
}

// Logout handles GET /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(h.client.Logout(), r).Do(r.Context()); err != nil {
		h.fail(w, "logout", err)
		return
	}
	writeRaw(w, http.StatusNoContent, nil)
}

// SignUp handles POST /api/auth/sign-up.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !decodeValid(w, r, &req) {
		return
	}
	user, err := h.client.SignUp(req).Do(r.Context())
	if err != nil {
		h.fail(w, "sign-up", err)
		return
	}
	h.logger.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	writeJSON(w, http.StatusCreated, user)
}

// ConfirmRegistration handles GET /api/auth/confirm-registration?token=.
func (h *AuthHandlers) ConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if _, err := h.client.ConfirmRegistration(token).Do(r.Context()); err != nil {
		h.fail(w, "confirm-registration", err)
		return
	}
	writeRaw(w, http.StatusNoContent, nil)
}

// ResendConfirmationEmail handles POST /api/auth/resend-confirmation-email.
func (h *AuthHandlers) ResendConfirmationEmail() http.HandlerFunc {
	return authAction(h, "resend-confirmation-email", h.client.ResendConfirmationEmail)
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandlers) ForgotPassword() http.HandlerFunc {
	return authAction(h, "forgot-password", h.client.ForgotPassword)
}

// ResetPassword handles PUT /api/auth/reset-password.
func (h *AuthHandlers) ResetPassword() http.HandlerFunc {
	return authAction(h, "reset-password", h.client.ResetPassword)
}

func authAction[T validatable](h *AuthHandlers, action string, op func(T) *clients.Call[clients.NoContent]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if !decodeValid(w, r, &req) {
			return
		}
		if _, err := op(req).Do(r.Context()); err != nil {
			h.fail(w, action, err)
			return
		}
		writeRaw(w, http.StatusNoContent, nil)
	}
}

func (h *AuthHandlers) fail(w http.ResponseWriter, action string, err error) {
	if _, ok := clients.AsStatusError(err); !ok {
		h.logger.Error("auth proxy failed", zap.String("action", action), zap.Error(err))
	}
	upstreamStatus(w, err, authUnavailable)
}
