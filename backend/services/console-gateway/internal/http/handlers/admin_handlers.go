package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bootstrapbugz/backend/libs/clients"
	"bootstrapbugz/backend/libs/models"
	"bootstrapbugz/backend/services/console-gateway/internal/audit"
	"bootstrapbugz/backend/services/console-gateway/internal/http/middleware"
)

const (
	adminUnavailable = "admin service unavailable"
	auditTimeout     = 5 * time.Second
)

// AdminHandlers proxies user-management actions.
type AdminHandlers struct {
	client   *clients.AdminService
	recorder audit.Recorder
	logger   *zap.Logger
}

// NewAdminHandlers returns handler struct.
func NewAdminHandlers(client *clients.AdminService, recorder audit.Recorder, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{client: client, recorder: recorder, logger: logger}
}

// Users handles GET /api/admin/users.
func (h *AdminHandlers) Users(w http.ResponseWriter, r *http.Request) {
	users, err := authorize(h.client.FindAllUsers(), r).Do(r.Context())
	if err != nil {
		h.logFailure("users", err)
		upstreamStatus(w, err, adminUnavailable)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Activate handles PUT /api/admin/users/activate.
func (h *AdminHandlers) Activate() http.HandlerFunc {
	return adminAction(h, "activate", adminUsernames, h.client.Activate)
}

// Deactivate handles PUT /api/admin/users/deactivate.
func (h *AdminHandlers) Deactivate() http.HandlerFunc {
	return adminAction(h, "deactivate", adminUsernames, h.client.Deactivate)
}

// Lock handles PUT /api/admin/users/lock.
func (h *AdminHandlers) Lock() http.HandlerFunc {
	return adminAction(h, "lock", adminUsernames, h.client.Lock)
}

// Unlock handles PUT /api/admin/users/unlock.
func (h *AdminHandlers) Unlock() http.HandlerFunc {
	return adminAction(h, "unlock", adminUsernames, h.client.Unlock)
}

// Delete handles DELETE /api/admin/users/delete.
func (h *AdminHandlers) Delete() http.HandlerFunc {
	return adminAction(h, "delete", adminUsernames, h.client.Delete)
}

// ChangeRole handles POST /api/admin/users/role.
func (h *AdminHandlers) ChangeRole() http.HandlerFunc {
	return adminAction(h, "change-role", func(req models.ChangeRoleRequest) []string { return req.Usernames }, h.client.ChangeRole)
}

func adminUsernames(req models.AdminRequest) []string {
	return req.Usernames
}

func adminAction[T validatable](
	h *AdminHandlers,
	action string,
	usernames func(T) []string,
	op func(T) *clients.Call[clients.NoContent],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if !decodeValid(w, r, &req) {
			return
		}

		status := http.StatusNoContent
		if _, err := authorize(op(req), r).Do(r.Context()); err != nil {
			h.logFailure(action, err)
			status = upstreamStatus(w, err, adminUnavailable)
		} else {
			writeRaw(w, status, nil)
		}

		h.record(r, audit.Entry{
			Action:    action,
			Usernames: usernames(req),
			Status:    status,
		})
	}
}

func (h *AdminHandlers) record(r *http.Request, entry audit.Entry) {
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		entry.Actor = p.Subject
	}
	entry.RequestID = clients.RequestIDFromContext(r.Context())
	entry.At = time.Now()

	// The row must land even when the caller hung up after the backend applied the change.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), auditTimeout)
	defer cancel()
	if err := h.recorder.Record(ctx, entry); err != nil {
		h.logger.Warn("audit record failed", zap.String("action", entry.Action), zap.Error(err))
	}
}

func (h *AdminHandlers) logFailure(action string, err error) {
	if _, ok := clients.AsStatusError(err); ok {
		h.logger.Info("admin action rejected upstream", zap.String("action", action), zap.Error(err))
		return
	}
	h.logger.Error("admin proxy failed", zap.String("action", action), zap.Error(err))
}
