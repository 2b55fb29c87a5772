package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"askida/internal/domain"
)

// APIError is a non-2xx response. Message carries the server-provided text shown to the user.
type APIError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("apiclient: %s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("apiclient: %s (%d)", e.Message, e.Status)
}

// Unwrap exposes the matching domain sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	return e.kind
}

// errorBody covers the FastAPI shapes: {"detail": {"status","message"}}, {"detail": "text"},
// {"detail": [{"msg": ...}]} for validation, and a flat {"message"} envelope.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Status  any             `json:"status"`
	Code    string          `json:"code"`
}

type detailObject struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func newAPIError(status int, raw []byte, r route) *APIError {
	apiErr := &APIError{Status: status, kind: classify(status, r)}
	apiErr.Message, apiErr.Code = extractMessage(raw)
	if apiErr.Message == "" {
		apiErr.Message = strings.ToLower(http.StatusText(status))
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("status %d", status)
		}
	}
	return apiErr
}

func extractMessage(raw []byte) (string, string) {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw)), ""
	}
	if len(body.Detail) > 0 {
		var obj detailObject
		if err := json.Unmarshal(body.Detail, &obj); err == nil && obj.Message != "" {
			return obj.Message, obj.Code
		}
		var text string
		if err := json.Unmarshal(body.Detail, &text); err == nil && text != "" {
			return text, ""
		}
		var items []validationItem
		if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				msgs = append(msgs, item.Msg)
			}
			return strings.Join(msgs, "; "), ""
		}
	}
	return body.Message, body.Code
}

func classify(status int, r route) error {
	switch status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest:
		if r == routeReservation {
			return domain.ErrConflict
		}
		return domain.ErrValidation
	case http.StatusUnprocessableEntity:
		return domain.ErrValidation
	case http.StatusRequestTimeout, http.StatusGatewayTimeout, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return domain.ErrNetwork
	default:
		return nil
	}
}

// UserMessage renders err as the text shown to a user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	switch {
	case errors.Is(err, domain.ErrNetwork):
		return "network error, please try again"
	case errors.Is(err, domain.ErrNotSignedIn):
		return "please log in"
	}
	return err.Error()
}
