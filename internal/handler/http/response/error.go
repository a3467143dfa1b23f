package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/checkout"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInvalidRole):
		Forbidden(w, "User role is not recognised")

	// Check-out domain errors
	case errors.Is(err, checkout.ErrUnauthorized):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, checkout.ErrExportForbidden):
		Forbidden(w, "Only administrators may export check-outs")
	case errors.Is(err, checkout.ErrRecordNotFound):
		NotFound(w, "Check-out not found")
	case errors.Is(err, checkout.ErrNothingDeleted):
		NotFound(w, "No matching check-outs to delete")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
