package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"jobmate/interview/internal/models"
	"jobmate/interview/internal/utils"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const validatedRequestKey contextKey = "validated_request"

// Validator is implemented by request structs that can check themselves.
type Validator interface {
	Validate() error
}

// ValidateRequest decodes the JSON body into T, validates it and stores it
// in the request context, so handlers can assume a well-formed request.
func ValidateRequest[T Validator]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req T
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				utils.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
				return
			}

			if err := req.Validate(); err != nil {
				var vErr *models.ValidationError
				if errors.As(err, &vErr) {
					utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: vErr})
				} else {
					utils.WriteError(w, http.StatusBadRequest, err.Error())
				}
				return
			}

			ctx := context.WithValue(r.Context(), validatedRequestKey, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetValidatedRequest retrieves the validated request from context.
func GetValidatedRequest[T any](r *http.Request) T {
	return r.Context().Value(validatedRequestKey).(T)
}
