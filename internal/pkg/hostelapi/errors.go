package hostelapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// Kind is the stable error discriminator returned by the hostel backend.
type Kind string

const (
	KindEmailUnverified    Kind = "EMAIL_UNVERIFIED"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindInvalidToken       Kind = "INVALID_TOKEN"
	KindTokenExpired       Kind = "TOKEN_EXPIRED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindValidation         Kind = "VALIDATION_FAILED"
	KindConflict           Kind = "CONFLICT"
	KindTimeout            Kind = "TIMEOUT"
	KindUnavailable        Kind = "UNAVAILABLE"
	KindUnknown            Kind = "UNKNOWN"
)

var knownKinds = map[Kind]bool{
	KindEmailUnverified:    true,
	KindInvalidCredentials: true,
	KindInvalidToken:       true,
	KindTokenExpired:       true,
	KindForbidden:          true,
	KindNotFound:           true,
	KindValidation:         true,
	KindConflict:           true,
	KindTimeout:            true,
	KindUnavailable:        true,
}

// Error is returned for every failed backend call.
type Error struct {
	Op      string
	Status  int
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("hostelapi %s: status=%d kind=%s: %s", e.Op, e.Status, e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("hostelapi %s: kind=%s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("hostelapi %s: kind=%s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the error kind, or "" when err is not a backend error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsKind reports whether err is a backend error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// errorBody covers the error shapes the backend emits.
type errorBody struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decodeError(op string, status int, body []byte) *Error {
	apiErr := &Error{Op: op, Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Message = firstNonEmpty(eb.Message, eb.Error)
		apiErr.Kind = parseKind(firstNonEmpty(eb.Kind, eb.Code))
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	if apiErr.Kind == "" {
		apiErr.Kind = kindFromStatus(status)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func parseKind(s string) Kind {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if knownKinds[k] {
		return k
	}
	return ""
}

func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindInvalidToken
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusGatewayTimeout:
		return KindTimeout
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

func classifyRequestError(ctx context.Context, op string, err error) error {
	switch {
	case isTimeoutError(ctx, err):
		return &Error{Op: op, Kind: KindTimeout, Message: "backend request timed out", Err: err}
	case isNetworkError(err):
		return &Error{Op: op, Kind: KindUnavailable, Message: "backend unreachable", Err: err}
	default:
		return &Error{Op: op, Kind: KindUnknown, Message: "backend request failed", Err: err}
	}
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
