// Package moderation provides an HTTP client for an external content
// safety classifier. The built-in guardrail patterns always run; this
// client adds a remote second opinion when an endpoint is configured.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/talgya/demiurge/internal/guardrail"
)

// Client calls a remote classifier service. It implements
// guardrail.Classifier.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client

	// Rate limiting: max calls per minute.
	mu        sync.Mutex
	callCount int
	resetAt   time.Time
	maxPerMin int
}

// NewClient creates a classifier client.
// Returns nil if endpoint is empty (remote classification disabled).
func NewClient(endpoint, apiKey string) *Client {
	if endpoint == "" {
		return nil
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxPerMin: 60,
	}
}

// Enabled returns true if the client has an endpoint configured.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// request is the classifier request body.
type request struct {
	Content string `json:"content"`
}

// response is the classifier response body.
type response struct {
	Violations []string `json:"violations"`
}

// Classify sends content to the remote classifier and maps its labels to
// violation kinds. Unknown labels are logged and dropped.
func (c *Client) Classify(ctx context.Context, content string) ([]guardrail.ViolationKind, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("moderation client not configured")
	}

	// Rate limiting.
	c.mu.Lock()
	now := time.Now()
	if now.After(c.resetAt) {
		c.callCount = 0
		c.resetAt = now.Add(time.Minute)
	}
	if c.callCount >= c.maxPerMin {
		c.mu.Unlock()
		return nil, fmt.Errorf("rate limit exceeded (%d calls/min)", c.maxPerMin)
	}
	c.callCount++
	c.mu.Unlock()

	body, err := json.Marshal(request{Content: content})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("classifier call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	out := make([]guardrail.ViolationKind, 0, len(apiResp.Violations))
	for _, label := range apiResp.Violations {
		kind, ok := violationForLabel(label)
		if !ok {
			slog.Warn("unknown classifier label", "label", label)
			continue
		}
		out = append(out, kind)
	}

	slog.Debug("remote classification", "labels", len(apiResp.Violations), "mapped", len(out))
	return out, nil
}

// violationForLabel maps a service label to a guardrail violation kind.
func violationForLabel(label string) (guardrail.ViolationKind, bool) {
	switch label {
	case "self_harm":
		return guardrail.ViolationSelfHarm, true
	case "suicide_validation":
		return guardrail.ViolationSuicideValidation, true
	case "violence":
		return guardrail.ViolationViolence, true
	case "coercive_intimacy":
		return guardrail.ViolationCoerciveIntimacy, true
	case "emotional_dependency":
		return guardrail.ViolationDependency, true
	default:
		return "", false
	}
}
