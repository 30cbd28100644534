// Package bedrock implements the knowledge-base-augmented AI backend over
// the Bedrock Agent Runtime retrieveAndGenerate API, authenticated with a
// bearer API key.
package bedrock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	llmhttp "github.com/banderson/issueops/internal/adapter/llm/http"
)

const defaultTimeout = 120 * time.Second

// Client is an HTTP client for the Agent Runtime retrieveAndGenerate call.
type Client struct {
	apiKey          string
	knowledgeBaseID string
	modelARN        string
	baseURL         string
	httpClient      *http.Client
	retryConf       llmhttp.RetryConfig
}

// NewClient creates a client for the given region, knowledge base, and
// generating model ARN.
func NewClient(apiKey, region, knowledgeBaseID, modelARN string) *Client {
	return &Client{
		apiKey:          apiKey,
		knowledgeBaseID: knowledgeBaseID,
		modelARN:        modelARN,
		baseURL:         fmt.Sprintf("https://bedrock-agent-runtime.%s.amazonaws.com", region),
		httpClient:      &http.Client{Timeout: defaultTimeout},
		retryConf:       llmhttp.DefaultRetryConfig(),
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

// SetRetryConfig overrides the retry behavior.
func (c *Client) SetRetryConfig(conf llmhttp.RetryConfig) {
	c.retryConf = conf
}

// Complete generates a response to the prompt augmented with retrieved
// knowledge-base content.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := RetrieveAndGenerateRequest{
		Input: InputText{Text: prompt},
		Configuration: Configuration{
			Type: "KNOWLEDGE_BASE",
			KnowledgeBase: KnowledgeBaseConfiguration{
				KnowledgeBaseID: c.knowledgeBaseID,
				ModelARN:        c.modelARN,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/retrieveAndGenerate"

	var bodyBytes []byte
	err = llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if reqErr != nil {
			return &llmhttp.Error{
				Type:     llmhttp.ErrTypeUnknown,
				Message:  reqErr.Error(),
				Provider: "bedrock",
			}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, callErr := c.httpClient.Do(req)
		if callErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Provider:  "bedrock",
			}
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeUnknown,
				Message:   readErr.Error(),
				Retryable: true,
				Provider:  "bedrock",
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

	var ragResp RetrieveAndGenerateResponse
	if err := json.Unmarshal(bodyBytes, &ragResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if ragResp.Output.Text == "" {
		return "", fmt.Errorf("no output text in response")
	}

	return ragResp.Output.Text, nil
}

// mapErrorResponse maps HTTP status codes to typed errors.
func mapErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}

	httpErr := &llmhttp.Error{
		Message:    message,
		StatusCode: statusCode,
		Provider:   "bedrock",
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		httpErr.Type = llmhttp.ErrTypeAuthentication
	case http.StatusNotFound:
		// Unknown knowledge base or model ARN.
		httpErr.Type = llmhttp.ErrTypeNotFound
	case http.StatusTooManyRequests:
		httpErr.Type = llmhttp.ErrTypeRateLimit
		httpErr.Retryable = true
	case http.StatusBadRequest:
		httpErr.Type = llmhttp.ErrTypeInvalidRequest
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		httpErr.Type = llmhttp.ErrTypeServiceUnavailable
		httpErr.Retryable = true
	default:
		httpErr.Type = llmhttp.ErrTypeUnknown
	}

	return httpErr
}
