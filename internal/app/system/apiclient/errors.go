package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/labhub/internal/domain/models"
)

// ErrMissingParam is returned, without contacting the backend, when a
// required path parameter is empty.
var ErrMissingParam = errors.New("missing required parameter")

// APIError is a non-2xx response from the backend.
//
// A 422 carries field-level Validation entries. Other statuses usually carry
// a plain Detail string.
type APIError struct {
	Endpoint   string
	Status     int
	Detail     string
	Validation []models.ValidationError
}

func (e *APIError) Error() string {
	msg := e.Message()
	return fmt.Sprintf("%s: backend returned %d: %s", e.Endpoint, e.Status, msg)
}

// IsValidation reports whether the error is a 422 validation failure.
func (e *APIError) IsValidation() bool {
	return e.Status == http.StatusUnprocessableEntity
}

// Message is a single human-readable description of the failure.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Validation) > 0 {
		return e.Validation[0].Msg
	}
	if t := http.StatusText(e.Status); t != "" {
		return t
	}
	return "unexpected status " + strconv.Itoa(e.Status)
}

// FieldErrors maps each offending field to its first message. The leading
// location segment ("body", "query", "path") is dropped, so
// ["body","can_edit_lab"] becomes "can_edit_lab".
func (e *APIError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Validation))
	for _, v := range e.Validation {
		field := FieldFromLoc(v.Loc)
		if field == "" {
			continue
		}
		if _, seen := out[field]; !seen {
			out[field] = v.Msg
		}
	}
	return out
}

// FieldFromLoc turns a validation location into a dotted field name.
func FieldFromLoc(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, seg := range loc {
		var s string
		switch v := seg.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			s = strconv.Itoa(v)
		default:
			s = fmt.Sprint(v)
		}
		if i == 0 && len(loc) > 1 {
			switch s {
			case "body", "query", "path", "header", "cookie":
				continue
			}
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

// newAPIError decodes an error body. The backend sends
// {"detail": [...]} for validation failures and {"detail": "..."} otherwise;
// anything else is kept as raw text.
// maxDetailRunes caps how much of a non-JSON error body is kept.
const maxDetailRunes = 200

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func newAPIError(endpoint string, status int, body []byte) *APIError {
	e := &APIError{Endpoint: endpoint, Status: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		e.Detail = truncateRunes(strings.TrimSpace(string(body)), maxDetailRunes)
		return e
	}

	var list []models.ValidationError
	if err := json.Unmarshal(envelope.Detail, &list); err == nil {
		e.Validation = list
		return e
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		e.Detail = s
	}
	return e
}
