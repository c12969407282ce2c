// Package agent wraps the remote AI agent collaborators: the invocation
// endpoint shared by the medicine scanner and the health assistant, and
// the file upload endpoint that stages scan images.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/medimart/health-companion/pkg/logging"
)

const defaultUserAgent = "medimart-health-companion/0.1"

// Config controls how the agent client behaves.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	UserAgent  string
}

// Client calls the agent invocation and file upload endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("agent: base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// InvokeOption mutates an invocation request before it is sent.
type InvokeOption func(*invokeRequest)

// WithAssets attaches uploaded asset references to the invocation.
func WithAssets(assetIDs []string) InvokeOption {
	return func(req *invokeRequest) {
		req.Assets = assetIDs
	}
}

type invokeRequest struct {
	Message string   `json:"message"`
	AgentID string   `json:"agent_id"`
	Assets  []string `json:"assets,omitempty"`
}

// Invoke submits a free-text message to the identified agent and decodes
// the response envelope. A non-2xx status or an undecodable body is a
// transport error; the caller decides whether to fall back.
func (c *Client) Invoke(ctx context.Context, message, agentID string, opts ...InvokeOption) (InvokeResult, error) {
	if strings.TrimSpace(agentID) == "" {
		return InvokeResult{}, errors.New("agent: agent ID is required")
	}

	reqBody := invokeRequest{Message: message, AgentID: agentID}
	for _, opt := range opts {
		opt(&reqBody)
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return InvokeResult{}, fmt.Errorf("agent: marshal invoke request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/agents/invoke", bytes.NewReader(body))
	if err != nil {
		return InvokeResult{}, fmt.Errorf("agent: build invoke request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return InvokeResult{}, fmt.Errorf("agent: invoke %s: %w", agentID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return InvokeResult{}, fmt.Errorf("agent: read invoke response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return InvokeResult{}, fmt.Errorf("agent: invoke %s: unexpected status %d", agentID, resp.StatusCode)
	}

	var result InvokeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return InvokeResult{}, fmt.Errorf("agent: decode invoke response: %w", err)
	}

	c.logger.Debug("agent invocation completed",
		"agent_id", agentID,
		"success", result.Success,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Upload stages a file with the upload collaborator and returns the
// asset references to pass back into Invoke.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("agent: build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResult{}, fmt.Errorf("agent: copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("agent: finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/upload", &buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("agent: build upload request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("agent: upload %s: %w", filename, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return UploadResult{}, fmt.Errorf("agent: read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return UploadResult{}, fmt.Errorf("agent: upload %s: unexpected status %d", filename, resp.StatusCode)
	}

	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return UploadResult{}, fmt.Errorf("agent: decode upload response: %w", err)
	}
	return result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
