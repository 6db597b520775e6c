package errorhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/logger"
	"github.com/hostelhub/hostelhub-api/internal/pkg/response"
)

// HandleError logs the failure with request context and writes the error envelope.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("error_code", code).
		Int("status_code", status)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(message)

	response.Error(w, status, code, message)
}

// HandleErrorWithDetails is HandleError with per-field details.
func HandleErrorWithDetails(ctx context.Context, w http.ResponseWriter, status int, code, message string, details map[string]string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("error_code", code).
		Int("status_code", status)
	if err != nil {
		event = event.Err(err)
	}
	if details != nil {
		event = event.Interface("error_details", details)
	}
	event.Msg(message)

	response.ErrorWithDetails(w, status, code, message, details)
}

// LogValidationError logs rejected input at warn level.
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	logger.FromContext(ctx).Warn().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
}

// HandleUpstreamError translates a hostel backend failure into a response.
// The backend's kind is forwarded as the error code so clients can branch on it.
func HandleUpstreamError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := hostelapi.KindOf(err)
	if kind == "" {
		HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
		return
	}

	status := StatusForKind(kind)
	message := "Hostel backend request failed"
	var apiErr *hostelapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" && status < http.StatusInternalServerError {
		message = apiErr.Message
	}

	event := logger.FromContext(ctx).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromContext(ctx).Error()
	}
	event.Err(err).
		Str("upstream_kind", string(kind)).
		Int("status_code", status).
		Msg("Hostel backend error")

	response.Error(w, status, string(kind), message)
}

// StatusForKind maps a backend error kind to the HTTP status returned to clients.
func StatusForKind(kind hostelapi.Kind) int {
	switch kind {
	case hostelapi.KindNotFound:
		return http.StatusNotFound
	case hostelapi.KindValidation:
		return http.StatusUnprocessableEntity
	case hostelapi.KindConflict:
		return http.StatusConflict
	case hostelapi.KindForbidden, hostelapi.KindEmailUnverified:
		return http.StatusForbidden
	case hostelapi.KindInvalidToken, hostelapi.KindTokenExpired, hostelapi.KindInvalidCredentials:
		return http.StatusUnauthorized
	case hostelapi.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// LogExternalServiceError logs a failed call to an external dependency.
func LogExternalServiceError(ctx context.Context, service, operation string, statusCode int, err error) {
	logger.FromContext(ctx).Error().
		Str("external_service", service).
		Str("operation", operation).
		Int("status_code", statusCode).
		Err(err).
		Msg("External service error")
}
