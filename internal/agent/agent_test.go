package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prudhvi1709/smart-cli/internal/config"
	"github.com/prudhvi1709/smart-cli/internal/llm"
	llmmock "github.com/prudhvi1709/smart-cli/internal/llm/mock"
)

func newTestRegistry(chatFn func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error)) *llm.Registry {
	reg := llm.NewRegistry()
	reg.RegisterProvider("mock", &llmmock.Provider{ChatFn: chatFn})
	reg.RegisterModel("default", llm.ModelRoute{Provider: "mock", Model: "m"}, true)
	return reg
}

func TestAskSendsSystemPromptAndQuery(t *testing.T) {
	var captured llm.ChatRequest
	reg := newTestRegistry(func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		captured = req
		return llm.ChatResponse{Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: "DIRECT_ANSWER: hi"}}, nil
	})

	c := New(reg, config.AgentConfig{MaxTokens: 512}, "", "", zap.NewNop())
	out, err := c.Ask(context.Background(), "say hi")
	require.NoError(t, err)
	require.Equal(t, "DIRECT_ANSWER: hi", out)

	require.Len(t, captured.Messages, 2)
	require.Equal(t, llm.RoleSystem, captured.Messages[0].Role)
	require.Contains(t, captured.Messages[0].Content, "DIRECT_ANSWER")
	require.Contains(t, captured.Messages[0].Content, "CODE_EXECUTION")
	require.Contains(t, captured.Messages[0].Content, "NEED_CONTEXT")
	require.Equal(t, "say hi", captured.Messages[1].Content)
	require.Equal(t, 512, captured.MaxTokens)
}

func TestAskAccumulatesHistory(t *testing.T) {
	calls := 0
	var second llm.ChatRequest
	reg := newTestRegistry(func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		calls++
		if calls == 2 {
			second = req
		}
		return llm.ChatResponse{Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: "NEED_CONTEXT: which file?"}}, nil
	})

	c := New(reg, config.AgentConfig{}, "", "", zap.NewNop())
	_, err := c.Ask(context.Background(), "first")
	require.NoError(t, err)
	_, err = c.Ask(context.Background(), "second")
	require.NoError(t, err)

	// system + first user + first assistant + second user
	require.Len(t, second.Messages, 4)
	require.Equal(t, "first", second.Messages[1].Content)
	require.Equal(t, llm.RoleAssistant, second.Messages[2].Role)

	history := c.History()
	require.Len(t, history, 4)
	require.Equal(t, llm.RoleUser, history[0].Role)
	require.Equal(t, "second", history[2].Content)
}

func TestAskIncludesToolSummary(t *testing.T) {
	var captured llm.ChatRequest
	reg := newTestRegistry(func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		captured = req
		return llm.ChatResponse{Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: "ok"}}, nil
	})

	c := New(reg, config.AgentConfig{}, "", "External tools available through connected servers:\n- read_file: Read a file", zap.NewNop())
	_, err := c.Ask(context.Background(), "list my files")
	require.NoError(t, err)
	require.Contains(t, captured.Messages[0].Content, "read_file")
}

func TestAskRejectsEmptyQuery(t *testing.T) {
	reg := newTestRegistry(nil)
	c := New(reg, config.AgentConfig{}, "", "", zap.NewNop())
	_, err := c.Ask(context.Background(), "")
	require.Error(t, err)
}

func TestAskUnknownModelFails(t *testing.T) {
	reg := newTestRegistry(nil)
	c := New(reg, config.AgentConfig{}, "nope", "", zap.NewNop())
	_, err := c.Ask(context.Background(), "hello")
	require.Error(t, err)
}
