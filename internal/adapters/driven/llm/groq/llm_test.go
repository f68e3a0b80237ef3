package groq

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
	"github.com/phishguard-labs/phishguard-cli/internal/core/ports/driven"
)

func testMessages() []driven.ChatMessage {
	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "You are an analyst."},
		{Role: driven.RoleUser, Content: "<email>wire money now</email>"},
	}
}

func completionBody(text string) string {
	return `{
		"choices": [{"message": {"content": ` + mustJSON(text) + `}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 42, "completion_tokens": 17}
	}`
}

func mustJSON(s string) string {
	data, _ := json.Marshal(s) //nolint:errcheck
	return string(data)
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMAuth)
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(Config{APIKey: "gsk_test"})

	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestLLMService_Classify_Success(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("Verdict: SAFE")) //nolint:errcheck
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "gsk_test", BaseURL: server.URL})
	require.NoError(t, err)

	completion, err := svc.Classify(context.Background(), testMessages(), driven.GenerateOptions{MaxTokens: 512})

	require.NoError(t, err)
	assert.Equal(t, "Verdict: SAFE", completion.Text)
	assert.Equal(t, 42, completion.PromptTokens)
	assert.Equal(t, 17, completion.CompletionTokens)
	assert.Equal(t, "Bearer gsk_test", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	assert.Equal(t, DefaultModel, sent["model"])
	assert.Len(t, sent["messages"], 2)
	// Temperature zero must still be serialised; the provider default
	// is non-zero.
	_, present := sent["temperature"]
	assert.True(t, present)
	assert.EqualValues(t, 512, sent["max_tokens"])
}

func TestLLMService_Classify_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "gsk_bad", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Classify(context.Background(), testMessages(), driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMAuth)
}

func TestLLMService_Classify_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "gsk_test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Classify(context.Background(), testMessages(), driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestLLMService_Classify_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "gsk_test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Classify(context.Background(), testMessages(), driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestLLMService_Classify_DeadlineExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		io.WriteString(w, completionBody("too late")) //nolint:errcheck
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "gsk_test", BaseURL: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.Classify(ctx, testMessages(), driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMTimeout)
}

func TestLLMService_Classify_Unreachable(t *testing.T) {
	svc, err := NewLLMService(Config{APIKey: "gsk_test", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = svc.Classify(context.Background(), testMessages(), driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestLLMService_Classify_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"choices": [], "usage": {}}`) //nolint:errcheck
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "gsk_test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Classify(context.Background(), testMessages(), driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestLLMService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "gsk_test", BaseURL: server.URL})
	require.NoError(t, err)

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestLLMService_Ping_BadKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "gsk_bad", BaseURL: server.URL})
	require.NoError(t, err)

	err = svc.Ping(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMAuth)
}
