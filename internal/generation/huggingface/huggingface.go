package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"ragsum/internal/domain"
	"ragsum/internal/generation"
)

const (
	DefaultBaseURL = "https://router.huggingface.co/hf-inference"
	DefaultModel   = "facebook/bart-large-cnn"
	// FallbackAPIKeyEnv is consulted when the configured variable is unset.
	FallbackAPIKeyEnv = "HF_TOKEN"
)

// Client calls the Hugging Face Inference API summarization task.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
}

// Config configures the Hugging Face client. APIKey wins over APIKeyEnv.
type Config struct {
	BaseURL    string
	APIKey     string
	APIKeyEnv  string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

var _ domain.Generator = (*Client)(nil)

// NewClient creates a client, or fails with domain.ErrGenerationUnavailable
// when no API token can be found.
func NewClient(cfg Config) (*Client, error) {
	key := cfg.APIKey
	if key == "" && cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if key == "" {
		key = os.Getenv(FallbackAPIKeyEnv)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: missing API key in env %s or %s", domain.ErrGenerationUnavailable, cfg.APIKeyEnv, FallbackAPIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Name returns the identifier of this generator.
func (c *Client) Name() string { return "huggingface" }

type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	CleanUpTokenizationSpaces bool `json:"clean_up_tokenization_spaces"`
}

type summaryItem struct {
	SummaryText string `json:"summary_text"`
}

// Generate asks the hosted model for a summary of text in about maxSentences
// sentences. Rate limiting, server errors and transport errors are retried
// with backoff until ctx is done.
func (c *Client) Generate(ctx context.Context, text string, maxSentences int) (string, error) {
	data, err := json.Marshal(request{
		Inputs:     generation.Prompt(text, maxSentences),
		Parameters: parameters{CleanUpTokenizationSpaces: true},
	})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, lastErr, attempt-1); err != nil {
				return "", fmt.Errorf("%w: %v (last error: %v)", domain.ErrGeneration, err, lastErr)
			}
		}
		summary, retry, err := c.do(ctx, url, data)
		if err == nil {
			return summary, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", domain.ErrGeneration, lastErr)
}

// retryAfterError carries a server-requested delay.
type retryAfterError struct {
	status string
	delay  time.Duration
}

func (e *retryAfterError) Error() string {
	return fmt.Sprintf("huggingface summarization failed: %s", e.status)
}

func (c *Client) do(ctx context.Context, url string, body []byte) (summary string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, err
	}
	payload, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		rerr := &retryAfterError{status: resp.Status}
		// Respect Retry-After if provided
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			rerr.delay = time.Duration(secs) * time.Second
		}
		return "", true, rerr
	}
	if resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("huggingface summarization failed: %s: %s", resp.Status, apiError(payload))
	}

	summary, err = decodeSummary(payload)
	return summary, false, err
}

// decodeSummary accepts the list shape the API documents and a bare object.
func decodeSummary(payload []byte) (string, error) {
	var items []summaryItem
	if err := json.Unmarshal(payload, &items); err == nil {
		if len(items) > 0 {
			if s := strings.TrimSpace(items[0].SummaryText); s != "" {
				return s, nil
			}
		}
		return "", errors.New("no summary returned")
	}
	var item summaryItem
	if err := json.Unmarshal(payload, &item); err != nil {
		return "", fmt.Errorf("malformed summarization response: %w", err)
	}
	if s := strings.TrimSpace(item.SummaryText); s != "" {
		return s, nil
	}
	if msg := apiError(payload); msg != "" {
		return "", fmt.Errorf("huggingface summarization failed: %s", msg)
	}
	return "", errors.New("no summary returned")
}

func apiError(payload []byte) string {
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return ""
	}
	return out.Error
}

func sleep(ctx context.Context, lastErr error, attempt int) error {
	d := retryDelay(attempt)
	var rerr *retryAfterError
	if errors.As(lastErr, &rerr) && rerr.delay > 0 {
		d = rerr.delay
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
