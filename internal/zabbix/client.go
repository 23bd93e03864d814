// Package zabbix talks to a Zabbix installation two ways: a JSON-RPC API
// client used by `aquamon prepare` to provision trapper objects, and a
// zabbix_sender wrapper used by the trapper sink to push cycle values.
package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aquamon/aquamon/internal/config"
)

const apiTimeout = 30 * time.Second

// Client is a Zabbix JSON-RPC API client.
type Client struct {
	cfg        *config.ZabbixConfig
	log        *slog.Logger
	httpClient *http.Client
	authToken  string
	apiVersion string
	requestID  int64
}

// NewClient connects to the Zabbix API: it fetches the API version (no auth
// required) and then logs in with the configured credentials.
func NewClient(cfg *config.Config, log *slog.Logger) (*Client, error) {
	if cfg.Zabbix.APIURL == "" {
		return nil, fmt.Errorf("zabbix.api_url is not configured")
	}

	c := &Client{
		cfg: &cfg.Zabbix,
		log: log,
		httpClient: &http.Client{
			Timeout:   apiTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	ver, err := c.GetAPIVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get API version: %w", err)
	}
	c.apiVersion = ver
	c.log.Debug("Detected Zabbix API version", slog.String("version", ver))

	if err := c.authenticate(); err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	return c, nil
}

// authenticate logs in to the Zabbix API. Zabbix 6.4 renamed the login
// parameter from "user" to "username".
func (c *Client) authenticate() error {
	userParam := "user"
	if c.getAPIVersionFloat() >= 6.4 {
		userParam = "username"
	}
	params := map[string]string{
		userParam:  c.cfg.APIUser,
		"password": c.cfg.APIPassword,
	}

	result, err := c.call("user.login", params)
	if err != nil {
		return err
	}

	token, ok := result.(string)
	if !ok {
		return fmt.Errorf("unexpected auth response type: %T", result)
	}

	c.authToken = token
	c.log.Debug("Authenticated with Zabbix API")
	return nil
}

// call makes a JSON-RPC call to the Zabbix API
func (c *Client) call(method string, params interface{}) (interface{}, error) {
	return c.callWithContext(context.Background(), method, params)
}

// callWithContext makes a JSON-RPC call with context
func (c *Client) callWithContext(ctx context.Context, method string, params interface{}) (interface{}, error) {
	reqID := atomic.AddInt64(&c.requestID, 1)

	reqBody := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      reqID,
	}

	// Add auth token if we have one (except for login)
	if c.authToken != "" && method != "user.login" {
		reqBody["auth"] = c.authToken
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	c.log.Debug("Calling Zabbix API", slog.String("method", method), slog.Int64("id", reqID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json-rpc")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error != nil {
		return nil, apiResp.Error
	}

	return apiResp.Result, nil
}

// GetAPIVersion returns the Zabbix API version
func (c *Client) GetAPIVersion() (string, error) {
	result, err := c.call("apiinfo.version", []string{})
	if err != nil {
		return "", err
	}
	version, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected API version type: %T", result)
	}
	return version, nil
}

// getAPIVersionFloat parses the stored API version string (e.g. "6.4.1") into
// a float like 6.4 for version-aware branching.
func (c *Client) getAPIVersionFloat() float64 {
	parts := strings.SplitN(c.apiVersion, ".", 3)
	if len(parts) >= 2 {
		v, _ := strconv.ParseFloat(parts[0]+"."+parts[1], 64)
		return v
	}
	return 0
}

// Close logs out from the Zabbix API
func (c *Client) Close() error {
	if c.authToken == "" {
		return nil
	}

	_, err := c.call("user.logout", []string{})
	c.authToken = ""
	return err
}
