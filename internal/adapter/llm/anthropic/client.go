// Package anthropic implements the direct AI backend over the Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/banderson/issueops/internal/adapter/llm/http"
)

const (
	defaultBaseURL          = "https://api.anthropic.com"
	defaultTimeout          = 60 * time.Second
	defaultMaxTokens        = 8192
	defaultAnthropicVersion = "2023-06-01"
)

// Client is an HTTP client for the Anthropic Messages API.
type Client struct {
	apiKey     string
	model      string
	maxTokens  int
	baseURL    string
	httpClient *http.Client
	retryConf  llmhttp.RetryConfig
}

// NewClient creates a new client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		maxTokens:  defaultMaxTokens,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  llmhttp.DefaultRetryConfig(),
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetMaxTokens sets the maximum number of output tokens per completion.
func (c *Client) SetMaxTokens(maxTokens int) {
	if maxTokens > 0 {
		c.maxTokens = maxTokens
	}
}

// SetRetryConfig overrides the retry behavior.
func (c *Client) SetRetryConfig(conf llmhttp.RetryConfig) {
	c.retryConf = conf
}

// Complete sends a single-user-message completion request and returns the
// response text joined from the content blocks.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := MessagesRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		MaxTokens: c.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/v1/messages"

	var bodyBytes []byte
	err = llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if reqErr != nil {
			return &llmhttp.Error{
				Type:     llmhttp.ErrTypeUnknown,
				Message:  reqErr.Error(),
				Provider: "anthropic",
			}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", defaultAnthropicVersion)

		resp, callErr := c.httpClient.Do(req)
		if callErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Provider:  "anthropic",
			}
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeUnknown,
				Message:   readErr.Error(),
				Retryable: true,
				Provider:  "anthropic",
			}
		}

		if resp.StatusCode >= 400 {
			return mapErrorResponse(resp.StatusCode, body)
		}

		bodyBytes = body
		return nil
	}, c.retryConf)
	if err != nil {
		return "", err
	}

	var messagesResp MessagesResponse
	if err := json.Unmarshal(bodyBytes, &messagesResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(messagesResp.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var textParts []string
	for _, block := range messagesResp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}

	return strings.Join(textParts, ""), nil
}

// mapErrorResponse maps HTTP status codes to typed errors.
func mapErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	httpErr := &llmhttp.Error{
		Message:    message,
		StatusCode: statusCode,
		Provider:   "anthropic",
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		httpErr.Type = llmhttp.ErrTypeAuthentication
	case http.StatusTooManyRequests:
		httpErr.Type = llmhttp.ErrTypeRateLimit
		httpErr.Retryable = true
	case http.StatusBadRequest:
		httpErr.Type = llmhttp.ErrTypeInvalidRequest
	case http.StatusNotFound:
		httpErr.Type = llmhttp.ErrTypeNotFound
	case 529: // Anthropic-specific: overloaded
		httpErr.Type = llmhttp.ErrTypeServiceUnavailable
		httpErr.Retryable = true
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		httpErr.Type = llmhttp.ErrTypeServiceUnavailable
		httpErr.Retryable = true
	default:
		httpErr.Type = llmhttp.ErrTypeUnknown
	}

	return httpErr
}
