package handlers

import (
	"encoding/json"
	"net/http"

	"bootstrapbugz/backend/libs/clients"
	"bootstrapbugz/backend/services/console-gateway/internal/http/middleware"
)

const maxBodyBytes = 1 << 20

type validatable interface {
	Validate() error
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	if len(body) > 0 && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeValid reads a JSON body into dst and runs its validation rules. It writes the
// 400 response itself and reports false on failure.
func decodeValid[T validatable](w http.ResponseWriter, r *http.Request, dst *T) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := (*dst).Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "validation failed",
			"details": err,
		})
		return false
	}
	return true
}

// authorize forwards the caller's Authorization header when the route is authenticated.
func authorize[T any](call *clients.Call[T], r *http.Request) *clients.Call[T] {
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		return call.WithHeader("Authorization", p.Authorization)
	}
	return call
}

// upstreamStatus relays an upstream error response as is, content type included, and
// reports the status sent.
// Any other error becomes 502.
func upstreamStatus(w http.ResponseWriter, err error, unavailable string) int {
	if statusErr, ok := clients.AsStatusError(err); ok {
		if ct := statusErr.Header.Get("Content-Type"); ct != "" && len(statusErr.Body) > 0 {
			w.Header().Set("Content-Type", ct)
		}
		writeRaw(w, statusErr.StatusCode, statusErr.Body)
		return statusErr.StatusCode
	}
	writeError(w, http.StatusBadGateway, unavailable)
	return http.StatusBadGateway
}
