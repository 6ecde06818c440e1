// Package webhook provides an HTTP client for posting analysis reports to
// webhook endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = config.DefaultWebhookTimeout

// RunIDHeader carries the report's run ID so receivers can deduplicate.
const RunIDHeader = "X-Chatlens-Run-Id"

// Client sends analysis reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// ShouldFire reports whether a webhook with the given trigger fires for
// report. An empty trigger behaves like on_records.
func ShouldFire(trigger config.WebhookTrigger, report *output.Report) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return report.HasRecords()
	}
}

// Send posts an analysis report to a webhook endpoint.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}

	payload, err := json.Marshal(report)
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal report: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "chatlens-webhook")
	if report.Metadata.RunID != "" {
		req.Header.Set(RunIDHeader, report.Metadata.RunID)
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1024*1024)) // Limit to 1MB
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}

// Dispatch sends report to every webhook whose trigger fires. Failures are
// logged and returned but never stop delivery to the remaining endpoints.
func (c *Client) Dispatch(ctx context.Context, report *output.Report, hooks []config.WebhookConfig) []*Response {
	var responses []*Response
	for _, wh := range hooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if !ShouldFire(wh.Trigger, report) {
			log.Debug().Str("webhook", name).Str("trigger", string(wh.Trigger)).Msg("webhook skipped")
			continue
		}

		resp := c.Send(ctx, report, SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})
		responses = append(responses, resp)

		if !resp.Success() {
			log.Warn().Err(resp.Error).Str("webhook", name).Int("status", resp.StatusCode).Msg("webhook failed")
			continue
		}
		log.Debug().Str("webhook", name).Int("status", resp.StatusCode).Dur("duration", resp.Duration).Msg("webhook sent")
	}
	return responses
}
