package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/drivemirror/pkg/utils/logging"
)

// LoggingMiddleware returns a middleware that logs HTTP requests and puts a
// request-scoped logger on the request context
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := logging.From(ctx).With("request_id", middleware.GetReqID(r.Context()))
			r = r.WithContext(logging.With(r.Context(), logger))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// errorResponse is the body of every non-2xx API response
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusOf maps an error kind to the HTTP status returned to API clients
func statusOf(err error) int {
	switch types.ErrorKind(err) {
	case "invalid_argument":
		return http.StatusBadRequest
	case "auth_failure":
		return http.StatusUnauthorized
	case "not_found":
		return http.StatusNotFound
	case "name_conflict", "path_collision":
		return http.StatusConflict
	case "cancelled":
		return http.StatusServiceUnavailable
	case "remote_service_error":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes an error response
func writeError(ctx context.Context, w http.ResponseWriter, err error, status int) {
	resp := errorResponse{Error: err.Error()}
	if kind := types.ErrorKind(err); kind != "internal_error" {
		resp.Kind = kind
	}
	writeJSON(ctx, w, status, resp)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(ctx).Error("Failed to encode response", "error", err)
	}
}
