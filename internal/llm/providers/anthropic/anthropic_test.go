package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prudhvi1709/smart-cli/internal/llm"
)

func TestChatLiftsSystemMessageAndParsesResponse(t *testing.T) {
	t.Parallel()

	p := NewProvider("anthropic", "http://mock", "key", 5*time.Second)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			require.Equal(t, "/v1/messages", r.URL.Path)
			require.Equal(t, "key", r.Header.Get("x-api-key"))
			require.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			var reqBody map[string]interface{}
			require.NoError(t, json.Unmarshal(body, &reqBody))
			require.Equal(t, "be brief", reqBody["system"])
			msgs, ok := reqBody["messages"].([]interface{})
			require.True(t, ok)
			require.Len(t, msgs, 1, "system message should not appear in messages")

			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body: io.NopCloser(strings.NewReader(`{
					"content": [{"type": "text", "text": "DIRECT_ANSWER: hi"}],
					"stop_reason": "end_turn",
					"usage": {"input_tokens": 4, "output_tokens": 6}
				}`)),
			}, nil
		}),
	}

	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		Model: "claude-sonnet-4-0",
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: "be brief"},
			{Role: llm.RoleUser, Content: "hi"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "DIRECT_ANSWER: hi", resp.Message.Content)
	require.Equal(t, "end_turn", resp.FinishReason)
	require.Equal(t, 10, resp.Usage.TotalTokens)
}

func TestChatJoinsTextBlocks(t *testing.T) {
	t.Parallel()

	p := NewProvider("anthropic", "http://mock", "", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body: io.NopCloser(strings.NewReader(`{
					"content": [
						{"type": "text", "text": "part one "},
						{"type": "text", "text": "part two"}
					],
					"stop_reason": "end_turn",
					"usage": {"input_tokens": 1, "output_tokens": 1}
				}`)),
			}, nil
		}),
	}

	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		Model:    "claude-sonnet-4-0",
		Messages: []llm.ChatMessage{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, "part one part two", resp.Message.Content)
}

func TestChatSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	p := NewProvider("anthropic", "http://mock", "", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusUnauthorized,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(`{"error": "bad key"}`)),
			}, nil
		}),
	}

	_, err := p.Chat(context.Background(), llm.ChatRequest{
		Model:    "claude-sonnet-4-0",
		Messages: []llm.ChatMessage{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
