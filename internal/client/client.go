// Package client talks to the relay's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"aidraw-backend/internal/middleware"
	"aidraw-backend/internal/models"
)

// APIError is a non-2xx answer from the relay.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// ErrStreamTruncated means the streamed body ended without proper termination.
var ErrStreamTruncated = errors.New("stream truncated by server")

// Credentials travel with every chat request.
type Credentials struct {
	AccessPassword string
	LLMConfig      *models.ProviderConfig
}

// Result is the outcome of a chat call.
type Result struct {
	Content string
	// QuotaExempt mirrors the X-Quota-Exempt response header.
	QuotaExempt bool
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// ServerInfo fetches GET /api/config.
func (c *Client) ServerInfo(ctx context.Context) (*models.ServerInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build config request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch server config")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	var info models.ServerInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "decode server config")
	}
	return &info, nil
}

// Chat sends a non-streaming request and returns the full reply.
func (c *Client) Chat(ctx context.Context, messages []models.ChatMessage, creds Credentials) (*Result, error) {
	resp, err := c.post(ctx, models.ChatRequest{Messages: messages, LLMConfig: creds.LLMConfig}, creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode chat response")
	}
	return &Result{Content: body.Content, QuotaExempt: quotaExempt(resp)}, nil
}

// ChatStream sends a streaming request and copies each chunk to out as it
// arrives. The returned Result holds the whole text. When the server cuts the
// stream short, the text received so far is returned with ErrStreamTruncated.
func (c *Client) ChatStream(ctx context.Context, messages []models.ChatMessage, creds Credentials, out io.Writer) (*Result, error) {
	resp, err := c.post(ctx, models.ChatRequest{Messages: messages, Stream: true, LLMConfig: creds.LLMConfig}, creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	result := &Result{QuotaExempt: quotaExempt(resp)}
	_, err = io.Copy(io.MultiWriter(out, &buf), resp.Body)
	result.Content = buf.String()
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, errors.Wrap(ErrStreamTruncated, err.Error())
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, payload models.ChatRequest, creds Credentials) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode chat request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "build chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	if creds.AccessPassword != "" {
		req.Header.Set(middleware.AccessPasswordHeader, creds.AccessPassword)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send chat request")
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func quotaExempt(resp *http.Response) bool {
	return resp.Header.Get(middleware.QuotaExemptHeader) == "true"
}

func decodeAPIError(resp *http.Response) error {
	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}
