package forms

import (
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
)

// FromAPIError unpacks a backend rejection of submitted values (400, 409 or
// 422) into a form-level message and per-field messages, so the form can be
// shown again with them. ok is false for any other failure, which the
// caller reports as an error instead.
func FromAPIError(err error) (msg string, fe FieldErrors, ok bool) {
	apiErr, isAPI := apiclient.AsAPIError(err)
	if !isAPI {
		return "", nil, false
	}
	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
	default:
		return "", nil, false
	}
	return apiErr.Message(), FieldErrors{}.Merge(apiErr.FieldErrors()), true
}
