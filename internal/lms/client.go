// Package lms is the boundary to the remote LMS webservice. Every named
// remote procedure goes through one token-authenticated HTTP endpoint;
// responses are parsed into typed structures here so malformed payloads
// surface as typed errors instead of propagating as zero values.
package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/pkg/config"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

// Client calls the LMS webservice endpoint.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
	observe func(function string, d time.Duration)
}

// NewClient builds a client with the transport-level timeout from config.
func NewClient(cfg config.LMSConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetObserver installs a latency callback invoked after every remote call.
func (c *Client) SetObserver(observe func(function string, d time.Duration)) {
	c.observe = observe
}

// wsException is the error shape the LMS returns with HTTP 200.
type wsException struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

// call invokes a named remote procedure and decodes its JSON reply into dest.
// dest may be nil for procedures with no meaningful return.
func (c *Client) call(ctx context.Context, function string, params url.Values, dest interface{}) error {
	form := url.Values{}
	form.Set("wstoken", c.token)
	form.Set("wsfunction", function)
	form.Set("moodlewsrestformat", "json")
	for key, values := range params {
		for _, value := range values {
			form.Add(key, value)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "build lms request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("lms call failed", zap.String("function", function), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			fmt.Sprintf("lms call %s failed", function))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			fmt.Sprintf("read lms response for %s", function))
	}

	latency := time.Since(start)
	c.logger.Debug("lms call",
		zap.String("function", function),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency))
	if c.observe != nil {
		c.observe(function, latency)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appErrors.Clone(appErrors.ErrUpstream,
			fmt.Sprintf("lms call %s returned status %d", function, resp.StatusCode))
	}

	// The LMS reports faults as a 200 with an exception body.
	var exc wsException
	if err := json.Unmarshal(body, &exc); err == nil && exc.Exception != "" {
		c.logger.Warn("lms exception",
			zap.String("function", function),
			zap.String("errorcode", exc.ErrorCode),
			zap.String("message", exc.Message))
		return appErrors.Clone(appErrors.ErrUpstream,
			fmt.Sprintf("lms %s: %s (%s)", function, exc.Message, exc.ErrorCode))
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status,
			fmt.Sprintf("decode lms response for %s", function))
	}
	return nil
}
