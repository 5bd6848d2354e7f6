package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/id8-org/id8-recovery/internal/config"
	"github.com/id8-org/id8-recovery/internal/logger"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultAttempts = 3
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls an OpenAI-compatible chat completions endpoint with key
// rotation and bounded retries.
type Client struct {
	baseURL     string
	keys        *KeyPool
	model       string
	timeout     time.Duration
	maxAttempts int
	httpClient  *http.Client
	log         *logger.Logger
}

func NewClient(cfg config.LLMConfig, log *logger.Logger) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		keys:        NewKeyPool(cfg.APIKeys),
		model:       cfg.Model,
		timeout:     timeout,
		maxAttempts: attempts,
		httpClient:  &http.Client{},
		log:         log,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// retryableError marks failures worth another attempt.
type retryableError struct {
	err   error
	after time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Complete sends a single-prompt completion request. Model "" uses the
// configured default. Rate limits and server errors are retried with
// backoff; other client errors fail immediately.
func (c *Client) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = c.model
	}
	messages := []ChatMessage{{Role: "user", Content: prompt}}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		reply, err := c.callAPI(ctx, messages, model)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		re, ok := err.(*retryableError)
		if !ok {
			return "", err
		}
		if attempt == c.maxAttempts {
			break
		}

		wait := re.after
		if wait == 0 {
			wait = time.Duration(attempt) * 2 * time.Second
		}
		c.log.Warn("completion attempt failed, retrying",
			"attempt", attempt, "wait", wait.String(), "error", err.Error())
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) callAPI(ctx context.Context, messages []ChatMessage, model string) (string, error) {
	reqBody := chatRequest{Model: model, Messages: messages}
	bodyBytes, _ := json.Marshal(reqBody)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := c.keys.Next(); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("call completion API: %w", err)}
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &retryableError{
			err:   fmt.Errorf("rate limited (status=429)"),
			after: retryAfter(resp),
		}
	case resp.StatusCode >= 500:
		return "", &retryableError{err: fmt.Errorf("server error (status=%d)", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("completion API rejected request (status=%d): %s", resp.StatusCode, string(respBytes))
	}

	var result chatResponse
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("completion API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}
