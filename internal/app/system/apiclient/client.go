// Package apiclient is the typed client for the lab inventory REST API.
//
// There is one method per backend endpoint. Each takes a single params
// struct holding exactly that endpoint's path parameters, query parameters
// and body. Calls are one-shot: no retries and no caching happen here.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/labhub/internal/app/system/metrics"
	"github.com/dalemusser/waffle/pantry/requestid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// Config configures a Client.
type Config struct {
	BaseURL   string            // e.g. http://localhost:8000
	Timeout   time.Duration     // per-request ceiling on top of the caller's context
	Transport http.RoundTripper // nil means http.DefaultTransport
}

// Client talks to the backend. The zero value is not usable; call New.
//
// A Client returned by New is anonymous. WithToken derives a client that
// authenticates every request with the viewer's bearer token.
type Client struct {
	base      string
	timeout   time.Duration
	transport http.RoundTripper
	hc        *http.Client
	token     string
	log       *zap.Logger
}

// New builds an anonymous client for the backend at cfg.BaseURL.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", cfg.BaseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// Backend calls carry the console request's id.
	rt := http.RoundTripper(&requestid.Transport{Base: cfg.Transport})
	return &Client{
		base:      strings.TrimRight(u.String(), "/"),
		timeout:   cfg.Timeout,
		transport: rt,
		hc:        &http.Client{Transport: rt, Timeout: cfg.Timeout},
		log:       logger,
	}, nil
}

// BaseURL returns the backend root this client targets.
func (c *Client) BaseURL() string { return c.base }

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	cp.hc = &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.transport,
		},
	}
	return &cp
}

// HasToken reports whether the client is authenticated.
func (c *Client) HasToken() bool { return c.token != "" }

// request describes one call. path is a template such as
// "/api/v1/labs/{lab_id}/items"; every {name} must be present in params.
type request struct {
	endpoint string
	method   string
	path     string
	params   map[string]string
	query    url.Values
	body     any
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	target, err := c.url(req)
	if err != nil {
		return err
	}

	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", req.endpoint, err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", req.endpoint, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		metrics.ObserveBackend(req.endpoint, req.method, 0, time.Since(start))
		c.log.Warn("backend request failed",
			zap.String("endpoint", req.endpoint),
			zap.String("method", req.method),
			zap.Error(err))
		return fmt.Errorf("%s: %w", req.endpoint, err)
	}
	defer resp.Body.Close()
	metrics.ObserveBackend(req.endpoint, req.method, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", req.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(req.endpoint, resp.StatusCode, raw)
		c.log.Debug("backend returned error",
			zap.String("endpoint", req.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Message()))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", req.endpoint, err)
	}
	return nil
}

// url expands the path template and appends the query string.
func (c *Client) url(req request) (string, error) {
	var b strings.Builder
	b.WriteString(c.base)

	p := req.path
	for {
		open := strings.IndexByte(p, '{')
		if open < 0 {
			b.WriteString(p)
			break
		}
		end := strings.IndexByte(p[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("%s: malformed path template %q", req.endpoint, req.path)
		}
		name := p[open+1 : open+end]
		val := strings.TrimSpace(req.params[name])
		if val == "" {
			return "", fmt.Errorf("%s: %w %q", req.endpoint, ErrMissingParam, name)
		}
		b.WriteString(p[:open])
		b.WriteString(url.PathEscape(val))
		p = p[open+end+1:]
	}

	if len(req.query) > 0 {
		b.WriteByte('?')
		b.WriteString(req.query.Encode())
	}
	return b.String(), nil
}

// pageQuery builds the skip/limit query shared by every listing endpoint.
func pageQuery(skip, limit int) url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(max(skip, 0)))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
