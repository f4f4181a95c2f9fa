// internal/domain/models/common.go
package models

// Message is the generic {"message": "..."} response.
type Message struct {
	Message string `json:"message"`
}

// Token is the access token issued by the login endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// TokenPayload is the subject carried inside an access token.
type TokenPayload struct {
	Sub string `json:"sub,omitempty"`
}

// ValidationError is one entry of a 422 response. Loc is the path to the
// offending value, e.g. ["body", "item_name"]; entries may be strings or
// integer indexes.
type ValidationError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// HTTPValidationError is the body of every 422 response.
type HTTPValidationError struct {
	Detail []ValidationError `json:"detail"`
}

// DefaultSiteName is shown in page titles and the header.
const DefaultSiteName = "LabHub"
