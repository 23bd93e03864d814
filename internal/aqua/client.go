package aqua

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aquamon/aquamon/internal/config"
)

const (
	loginPath       = "/api/v1/login"
	dashboardPath   = "/api/v1/dashboard"
	hostsPath       = "/api/v1/hosts"
	auditTotalsPath = "/api/v1/audit/access_totals?alert=-1&limit=100&time=hour&type=all"
	scanQueuePath   = "/api/v1/scanqueue/summary"
)

// dataTimeout bounds every data query. Login uses the configurable
// per-instance timeout instead.
const dataTimeout = 60 * time.Second

const defaultLoginTimeout = 10 * time.Second

// Client is an Aqua console API client. It holds no session state: Login
// returns the bearer token and the data queries take it explicitly, so each
// poll cycle authenticates from scratch.
type Client struct {
	baseURL      string
	user         string
	password     string
	log          *slog.Logger
	httpClient   *http.Client
	loginTimeout time.Duration
}

// NewClient creates an API client for one Aqua instance.
func NewClient(inst *config.Instance, log *slog.Logger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: inst.InsecureSkipVerify, //nolint:gosec // G402: user-configurable option, defaults to false
		},
	}

	loginTimeout := time.Duration(inst.Timeout) * time.Second
	if loginTimeout <= 0 {
		loginTimeout = defaultLoginTimeout
	}

	return &Client{
		baseURL:  strings.TrimRight(inst.URL, "/"),
		user:     inst.APIUser,
		password: inst.Password,
		log:      log,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(transport),
		},
		loginTimeout: loginTimeout,
	}
}

// Login obtains a fresh API token. Any failure — transport, HTTP status of
// 400 or above, or a response without a token — is reported as an AuthError.
func (c *Client) Login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"id":       c.user,
		"password": c.password,
	})
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("failed to marshal login request: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.loginTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	c.log.Debug("Requesting Aqua API token", slog.String("url", c.baseURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &AuthError{StatusCode: resp.StatusCode}
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return "", &AuthError{Err: fmt.Errorf("failed to decode login response: %w", err)}
	}
	if login.Token == "" {
		return "", &AuthError{Err: errors.New("login response missing token")}
	}

	return login.Token, nil
}

// Dashboard fetches the console dashboard counters.
func (c *Client) Dashboard(ctx context.Context, token string) (*Dashboard, error) {
	var d Dashboard
	if err := c.get(ctx, dashboardPath, token, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Hosts fetches the enforcer host count.
func (c *Client) Hosts(ctx context.Context, token string) (*HostCount, error) {
	var h HostCount
	if err := c.get(ctx, hostsPath, token, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// AuditAccessTotals fetches access audit event totals for the last hour.
func (c *Client) AuditAccessTotals(ctx context.Context, token string) (*AuditTotals, error) {
	var a AuditTotals
	if err := c.get(ctx, auditTotalsPath, token, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ScanQueueSummary fetches the image scan queue totals.
func (c *Client) ScanQueueSummary(ctx context.Context, token string) (*ScanQueueSummary, error) {
	var s ScanQueueSummary
	if err := c.get(ctx, scanQueuePath, token, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// get performs an authenticated GET against one endpoint and decodes the
// response into out. Failures are reported as FetchError carrying the path.
func (c *Client) get(ctx context.Context, path, token string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, dataTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &FetchError{Path: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	c.log.Debug("Querying Aqua API", slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return &FetchError{Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Path: path, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
