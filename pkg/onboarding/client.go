package onboarding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultUserID is the placeholder caller identity attached to every request.
// The contract is unauthenticated; production use swaps this for a verified
// identity supplied by an auth collaborator.
const DefaultUserID = "demo-user-123"

// maxResponseBodySize bounds response reads.
const maxResponseBodySize = 1 << 20 // 1 MB

// Client implements Service over the JSON onboarding contract:
//
//	GET  <base>/status
//	POST <base>/step/{stepId}   body {completed, data}
//	POST <base>/complete
//	POST <base>/skip
//
// Every call is a single attempt with no retry or backoff; failures surface
// to the engine which leaves local state untouched.
type Client struct {
	baseURL string
	httpc   *http.Client
	userID  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// ClientWithHTTPClient replaces the underlying http.Client.
func ClientWithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// ClientWithUserID overrides the caller identity header.
func ClientWithUserID(userID string) ClientOption {
	return func(c *Client) {
		if userID != "" {
			c.userID = userID
		}
	}
}

// NewClient constructs a Client rooted at baseURL (e.g. "https://host/api/onboarding").
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("onboarding: client base URL is required")
	}
	c := &Client{
		baseURL: baseURL,
		httpc:   http.DefaultClient,
		userID:  DefaultUserID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type statusEnvelope struct {
	Success bool   `json:"success"`
	Data    Status `json:"data"`
}

type stepEnvelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    StepResult `json:"data"`
}

type completeEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    CompletionResult `json:"data"`
}

type skipEnvelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    SkipResult `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// Status fetches the wizard status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var envelope statusEnvelope
	if err := c.do(ctx, http.MethodGet, "/status", nil, &envelope); err != nil {
		return Status{}, err
	}
	return envelope.Data, nil
}

// UpdateStep posts a step transition.
func (c *Client) UpdateStep(ctx context.Context, stepID int, completed bool, data map[string]any) (StepResult, error) {
	body := map[string]any{"completed": completed}
	if data != nil {
		body["data"] = data
	}
	var envelope stepEnvelope
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/step/%d", stepID), body, &envelope); err != nil {
		return StepResult{}, err
	}
	return envelope.Data, nil
}

// Complete posts the terminal completion transition.
func (c *Client) Complete(ctx context.Context) (CompletionResult, error) {
	var envelope completeEnvelope
	if err := c.do(ctx, http.MethodPost, "/complete", nil, &envelope); err != nil {
		return CompletionResult{}, err
	}
	return envelope.Data, nil
}

// Skip posts the terminal skip transition.
func (c *Client) Skip(ctx context.Context) (SkipResult, error) {
	var envelope skipEnvelope
	if err := c.do(ctx, http.MethodPost, "/skip", nil, &envelope); err != nil {
		return SkipResult{}, err
	}
	return envelope.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("onboarding: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("onboarding: build %s %s: %w", method, path, err)
	}
	req.Header.Set("user-id", c.userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("onboarding: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("onboarding: read %s %s response: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("onboarding: decode %s %s response: %w", method, path, err)
		}
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		var rejection errorEnvelope
		if err := json.Unmarshal(payload, &rejection); err != nil || rejection.Error == "" {
			return &RejectionError{Message: strings.TrimSpace(string(payload))}
		}
		return &RejectionError{Message: rejection.Error}
	default:
		return fmt.Errorf("onboarding: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}
}
