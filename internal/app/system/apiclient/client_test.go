package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/requestid"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// recorded is one request seen by the stub backend.
type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Type   string
	ReqID  string
	Body   string
}

type stub struct {
	mu     sync.Mutex
	seen   []recorded
	status int
	body   string
}

func newStub(t *testing.T, status int, body string) (*stub, *apiclient.Client) {
	t.Helper()
	s := &stub{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.seen = append(s.seen, recorded{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Type:   r.Header.Get("Content-Type"),
			ReqID:  r.Header.Get(requestid.DefaultHeader),
			Body:   string(raw),
		})
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = io.WriteString(w, s.body)
	}))
	t.Cleanup(srv.Close)

	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, c
}

func (s *stub) last(t *testing.T) recorded {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.seen) == 0 {
		t.Fatal("backend saw no request")
	}
	return s.seen[len(s.seen)-1]
}

func (s *stub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"", "localhost:8000", "ftp://backend", "://bad"} {
		if _, err := apiclient.New(apiclient.Config{BaseURL: base}, nil); err == nil {
			t.Errorf("New(%q) should fail", base)
		}
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := apiclient.New(apiclient.Config{BaseURL: "http://backend:8000/"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.BaseURL() != "http://backend:8000" {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
}

func TestReadItems_PathQueryAndBearer(t *testing.T) {
	s, c := newStub(t, http.StatusOK, `{"data":[{"item_id":"i-1","lab_id":"lab 1","item_name":"Beaker"}],"count":6}`)
	authed := c.WithToken("tok-123")
	if c.HasToken() || !authed.HasToken() {
		t.Fatal("WithToken must return an authenticated copy and leave the original anonymous")
	}

	got, err := authed.ReadItems(context.Background(), apiclient.ReadItemsParams{LabID: "lab 1", Skip: 5, Limit: 5})
	if err != nil {
		t.Fatalf("ReadItems: %v", err)
	}
	if got.Count != 6 || len(got.Data) != 1 || got.Data[0].ItemName != "Beaker" {
		t.Errorf("unexpected page: %+v", got)
	}

	req := s.last(t)
	if req.Method != http.MethodGet {
		t.Errorf("method = %s", req.Method)
	}
	if req.Path != "/api/v1/labs/lab%201/items" {
		t.Errorf("path = %s", req.Path)
	}
	if req.Query != "limit=5&skip=5" {
		t.Errorf("query = %s", req.Query)
	}
	if req.Auth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", req.Auth)
	}
}

func TestCreateLab_SendsJSONBody(t *testing.T) {
	s, c := newStub(t, http.StatusOK, `{"lab_id":"l-1","owner_id":"u-1","lab_place":"Room 101"}`)
	place := "Room 101"

	lab, err := c.WithToken("t").CreateLab(context.Background(), apiclient.CreateLabParams{
		Body: models.LabCreate{LabPlace: &place},
	})
	if err != nil {
		t.Fatalf("CreateLab: %v", err)
	}
	if lab.LabID != "l-1" || lab.Title() != "Room 101" {
		t.Errorf("unexpected lab: %+v", lab)
	}

	req := s.last(t)
	if req.Method != http.MethodPost || req.Path != "/api/v1/labs/" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if req.Type != "application/json" {
		t.Errorf("Content-Type = %q", req.Type)
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(req.Body), &sent); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if sent["lab_place"] != "Room 101" {
		t.Errorf("body = %s", req.Body)
	}
	if _, ok := sent["lab_num"]; ok {
		t.Error("unset optional fields should be omitted")
	}
}

func TestMissingPathParam_NoRequest(t *testing.T) {
	s, c := newStub(t, http.StatusOK, `{}`)
	ctx := context.Background()
	authed := c.WithToken("t")

	calls := []struct {
		name string
		call func() error
	}{
		{"ReadItem without item", func() error {
			_, err := authed.ReadItem(ctx, apiclient.ItemIDParams{LabID: "l-1"})
			return err
		}},
		{"DeleteLab blank id", func() error {
			_, err := authed.DeleteLab(ctx, apiclient.LabIDParams{LabID: "   "})
			return err
		}},
		{"ViewUserInLab without user", func() error {
			_, err := authed.ViewUserInLab(ctx, apiclient.MembershipParams{LabID: "l-1"})
			return err
		}},
		{"DeleteUser without id", func() error {
			_, err := authed.DeleteUser(ctx, apiclient.UserIDParams{})
			return err
		}},
	}
	for _, tc := range calls {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if !errors.Is(err, apiclient.ErrMissingParam) {
				t.Fatalf("err = %v, want ErrMissingParam", err)
			}
		})
	}
	if s.count() != 0 {
		t.Errorf("backend saw %d requests, want 0", s.count())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		validation bool
		fields     map[string]string
	}{
		{
			name:       "validation",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":[{"loc":["body","item_name"],"msg":"Field required","type":"missing"},{"loc":["body","item_name"],"msg":"second","type":"x"},{"loc":["query","limit"],"msg":"too big","type":"x"}]}`,
			wantMsg:    "Field required",
			validation: true,
			fields:     map[string]string{"item_name": "Field required", "limit": "too big"},
		},
		{
			name:    "detail string",
			status:  http.StatusNotFound,
			body:    `{"detail":"Item not found"}`,
			wantMsg: "Item not found",
		},
		{
			name:    "plain text",
			status:  http.StatusBadGateway,
			body:    `upstream down`,
			wantMsg: "upstream down",
		},
		{
			name:    "empty body",
			status:  http.StatusForbidden,
			body:    ``,
			wantMsg: "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newStub(t, tt.status, tt.body)
			_, err := c.WithToken("t").ReadLab(context.Background(), apiclient.LabIDParams{LabID: "l-1"})

			apiErr, ok := apiclient.AsAPIError(err)
			if !ok {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || !apiclient.IsStatus(err, tt.status) {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message() != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", apiErr.Message(), tt.wantMsg)
			}
			if apiErr.IsValidation() != tt.validation {
				t.Errorf("IsValidation() = %v", apiErr.IsValidation())
			}
			if tt.fields != nil {
				got := apiErr.FieldErrors()
				if len(got) != len(tt.fields) {
					t.Fatalf("FieldErrors() = %v, want %v", got, tt.fields)
				}
				for k, v := range tt.fields {
					if got[k] != v {
						t.Errorf("FieldErrors()[%q] = %q, want %q", k, got[k], v)
					}
				}
			}
			if !strings.Contains(err.Error(), "labs.read_lab") {
				t.Errorf("error %q should name the endpoint", err)
			}
		})
	}
}

func TestErrorResponses_LongBodyCutOnRuneBoundary(t *testing.T) {
	// 199 ASCII bytes then multi-byte runes: a byte cut at 200 would split one.
	body := strings.Repeat("x", 199) + strings.Repeat("é", 50)
	_, c := newStub(t, http.StatusBadGateway, body)
	_, err := c.WithToken("t").ReadLab(context.Background(), apiclient.LabIDParams{LabID: "l-1"})

	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		t.Fatalf("err = %v, want *APIError", err)
	}
	msg := apiErr.Message()
	if !utf8.ValidString(msg) {
		t.Errorf("Message() is not valid UTF-8: %q", msg)
	}
	if n := utf8.RuneCountInString(msg); n != 200 {
		t.Errorf("Message() has %d runes, want 200", n)
	}
	if !strings.HasSuffix(msg, "xé") {
		t.Errorf("Message() should end on a whole rune, got ...%q", msg[len(msg)-4:])
	}
}

func TestRequestIDForwarded(t *testing.T) {
	s, c := newStub(t, http.StatusOK, `{"data":[],"count":0}`)
	ctx := requestid.Set(context.Background(), "req-42")

	if _, err := c.WithToken("t").ReadLabs(ctx, apiclient.ReadLabsParams{Limit: 5}); err != nil {
		t.Fatalf("ReadLabs: %v", err)
	}
	if got := s.last(t).ReqID; got != "req-42" {
		t.Errorf("%s = %q, want req-42", requestid.DefaultHeader, got)
	}
}

func TestFieldFromLoc(t *testing.T) {
	tests := []struct {
		loc  []any
		want string
	}{
		{[]any{"body", "quantity"}, "quantity"},
		{[]any{"body", "users", float64(0), "email"}, "users.0.email"},
		{[]any{"path", "lab_id"}, "lab_id"},
		{[]any{"body"}, "body"},
		{[]any{"item_name"}, "item_name"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := apiclient.FieldFromLoc(tt.loc); got != tt.want {
			t.Errorf("FieldFromLoc(%v) = %q, want %q", tt.loc, got, tt.want)
		}
	}
}

func TestLoginAccessToken(t *testing.T) {
	s, c := newStub(t, http.StatusOK, `{"access_token":"abc","token_type":"bearer"}`)

	tok, err := c.LoginAccessToken(context.Background(), apiclient.LoginParams{
		Username: "ada@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("LoginAccessToken: %v", err)
	}
	if tok.AccessToken != "abc" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}

	req := s.last(t)
	if req.Path != "/api/v1/login/access-token" || req.Method != http.MethodPost {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if !strings.HasPrefix(req.Type, "application/x-www-form-urlencoded") {
		t.Errorf("Content-Type = %q", req.Type)
	}
	for _, want := range []string{"grant_type=password", "username=ada%40example.com", "password=correct+horse"} {
		if !strings.Contains(req.Body, want) {
			t.Errorf("form %q missing %q", req.Body, want)
		}
	}
}

func TestLoginAccessToken_Rejected(t *testing.T) {
	_, c := newStub(t, http.StatusBadRequest, `{"detail":"Incorrect email or password"}`)

	_, err := c.LoginAccessToken(context.Background(), apiclient.LoginParams{Username: "a@b.c", Password: "nope"})
	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message() != "Incorrect email or password" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestHealthCheck_EmptyBody(t *testing.T) {
	_, c := newStub(t, http.StatusOK, ``)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestParseTokenClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-42",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any key; the signature is not checked"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := apiclient.ParseTokenClaims(signed)
	if err != nil {
		t.Fatalf("ParseTokenClaims: %v", err)
	}
	if claims.Subject != "u-42" {
		t.Errorf("Subject = %q", claims.Subject)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, exp)
	}
	if claims.Expired(time.Now()) {
		t.Error("token should not be expired yet")
	}
	if !claims.Expired(exp.Add(time.Second)) {
		t.Error("token should be expired after exp")
	}

	if _, err := apiclient.ParseTokenClaims("not-a-jwt"); err == nil {
		t.Error("expected an error for a malformed token")
	}
	if (apiclient.TokenClaims{}).Expired(time.Now()) {
		t.Error("a token without exp never expires")
	}
}
