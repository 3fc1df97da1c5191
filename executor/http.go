// Package executor provides ToolExecutor implementations.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/filipexcode/AssistenteFinanceiro/core"
)

// DefaultTimeout bounds a remote tool call.
const DefaultTimeout = 30 * time.Second

// HTTPExecutor implements ToolExecutor by calling a finance advisor server
// over HTTP.
type HTTPExecutor struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// HTTPExecutorConfig configures the HTTP executor.
type HTTPExecutorConfig struct {
	// BaseURL is the server URL (e.g., "http://localhost:8080").
	BaseURL string

	// Token is sent as a bearer token when the server requires auth.
	Token string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration
}

// NewHTTPExecutor creates a new HTTP-based tool executor.
func NewHTTPExecutor(cfg HTTPExecutorConfig) *HTTPExecutor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &HTTPExecutor{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Execute runs a tool on the server.
func (e *HTTPExecutor) Execute(ctx context.Context, req *core.ExecuteRequest) (*core.ExecuteResponse, error) {
	return e.doRequest(ctx, http.MethodPost, "/api/tools/"+url.PathEscape(req.Tool), req)
}

// doRequest performs an HTTP request to the server.
func (e *HTTPExecutor) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*core.ExecuteResponse, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result core.ExecuteResponse
	decodeErr := json.Unmarshal(respBody, &result)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && result.Error != "" {
			return &core.ExecuteResponse{Success: false, Error: result.Error}, nil
		}
		return &core.ExecuteResponse{
			Success: false,
			Error:   fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}, nil
	}

	if decodeErr != nil {
		// Not our envelope: hand the raw body back as data.
		result = core.ExecuteResponse{
			Success: true,
			Data:    respBody,
		}
	}
	return &result, nil
}
