// Package notify talks to the external automation engine.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

const taskCompletedPath = "/webhook/n8n/task-completed"

// StatusError is returned when the automation engine answers with a non-2xx
// status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("automation engine responded %d: %s", e.StatusCode, e.Body)
}

// Client posts events to the automation engine webhooks.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for baseURL. The timeout bounds the whole
// exchange; callers may shorten it further through the request context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) SendTaskCompleted(ctx context.Context, event domain.TaskCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode task-completed event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+taskCompletedPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build task-completed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", event.EventID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post task-completed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
