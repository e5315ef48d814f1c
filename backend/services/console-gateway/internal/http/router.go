package httpserver

import (
	"net/http"

	"bootstrapbugz/backend/services/console-gateway/internal/http/handlers"
	"bootstrapbugz/backend/services/console-gateway/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	AdminHandlers *handlers.AdminHandlers
	AuthHandlers  *handlers.AuthHandlers
	HealthHandler http.HandlerFunc
	// Throttle guards the unauthenticated auth endpoints.
	Throttle func(http.Handler) http.Handler
}

// NewRouter wires HTTP routes with middleware.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	throttle := deps.Throttle
	if throttle == nil {
		throttle = func(next http.Handler) http.Handler { return next }
	}
	authenticated := func(handler http.Handler) http.Handler {
		return middleware.Chain(handler, middleware.BearerAuth())
	}

	mux.Handle("/health", method(http.MethodGet, deps.HealthHandler))

	admin := deps.AdminHandlers
	mux.Handle("/api/admin/users", method(http.MethodGet, authenticated(http.HandlerFunc(admin.Users))))
	mux.Handle("/api/admin/users/activate", method(http.MethodPut, authenticated(admin.Activate())))
	mux.Handle("/api/admin/users/deactivate", method(http.MethodPut, authenticated(admin.Deactivate())))
	mux.Handle("/api/admin/users/lock", method(http.MethodPut, authenticated(admin.Lock())))
	mux.Handle("/api/admin/users/unlock", method(http.MethodPut, authenticated(admin.Unlock())))
	mux.Handle("/api/admin/users/delete", method(http.MethodDelete, authenticated(admin.Delete())))
	mux.Handle("/api/admin/users/role", method(http.MethodPost, authenticated(admin.ChangeRole())))

	auth := deps.AuthHandlers
	mux.Handle("/api/auth/login", method(http.MethodPost, throttle(http.HandlerFunc(auth.Login))))
	mux.Handle("/api/auth/logout", method(http.MethodGet, authenticated(http.HandlerFunc(auth.Logout))))
	mux.Handle("/api/auth/sign-up", method(http.MethodPost, throttle(http.HandlerFunc(auth.SignUp))))
	mux.Handle("/api/auth/confirm-registration", method(http.MethodGet, http.HandlerFunc(auth.ConfirmRegistration)))
	mux.Handle("/api/auth/resend-confirmation-email", method(http.MethodPost, throttle(auth.ResendConfirmationEmail())))
	mux.Handle("/api/auth/forgot-password", method(http.MethodPost, throttle(auth.ForgotPassword())))
	mux.Handle("/api/auth/reset-password", method(http.MethodPut, auth.ResetPassword()))

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
