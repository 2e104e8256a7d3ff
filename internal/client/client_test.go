package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidraw-backend/internal/middleware"
	"aidraw-backend/internal/models"
)

var hi = []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}}

func TestClient_Chat(t *testing.T) {
	var got models.ChatRequest
	var password string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		password = r.Header.Get(middleware.AccessPasswordHeader)
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set(middleware.QuotaExemptHeader, "true")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"content":"hello"}`)
	}))
	defer srv.Close()

	override := &models.ProviderConfig{Provider: "deepseek", BaseURL: "https://api.deepseek.com/v1", APIKey: "sk"}
	res, err := New(srv.URL+"/", nil).Chat(context.Background(), hi, Credentials{AccessPassword: "secret", LLMConfig: override})
	require.NoError(t, err)

	assert.Equal(t, &Result{Content: "hello", QuotaExempt: true}, res)
	assert.Equal(t, "secret", password)
	assert.False(t, got.Stream)
	assert.Equal(t, hi, got.Messages)
	assert.Equal(t, override, got.LLMConfig)
}

func TestClient_Chat_APIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected *APIError
	}{
		{"json error", http.StatusUnauthorized, `{"error":"Invalid access password"}`, &APIError{Status: 401, Message: "Invalid access password"}},
		{"plain text error", http.StatusBadGateway, `upstream down`, &APIError{Status: 502, Message: "Bad Gateway"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, srv.Client()).Chat(context.Background(), hi, Credentials{})

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.expected, apiErr)
		})
	}
}

func TestClient_ChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.True(t, req.Stream)

		w.Header().Set(middleware.QuotaExemptHeader, "false")
		for _, chunk := range []string{"<mxGraphModel>", "<root/>", "</mxGraphModel>"} {
			fmt.Fprint(w, chunk)
			w.(http.Flusher).Flush()
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	res, err := New(srv.URL, srv.Client()).ChatStream(context.Background(), hi, Credentials{}, &out)
	require.NoError(t, err)

	assert.Equal(t, "<mxGraphModel><root/></mxGraphModel>", out.String())
	assert.Equal(t, out.String(), res.Content)
	assert.False(t, res.QuotaExempt)
}

func TestClient_ChatStream_Truncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, chunk := range []string{"one ", "two ", "three"} {
			fmt.Fprint(w, chunk)
			w.(http.Flusher).Flush()
		}
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	var out bytes.Buffer
	res, err := New(srv.URL, srv.Client()).ChatStream(context.Background(), hi, Credentials{}, &out)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStreamTruncated))
	assert.Equal(t, "one two three", res.Content)
	assert.Equal(t, "one two three", out.String())
}

func TestClient_ServerInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/config", r.URL.Path)
		fmt.Fprint(w, `{"dailyQuota":5,"accessPasswordRequired":true,"provider":"openai","modelId":"gpt-4o-mini"}`)
	}))
	defer srv.Close()

	info, err := New(srv.URL, srv.Client()).ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.ServerInfo{DailyQuota: 5, AccessPasswordRequired: true, Provider: "openai", ModelID: "gpt-4o-mini"}, info)
}
