// Package agent owns the conversation with the model collaborator.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prudhvi1709/smart-cli/internal/config"
	"github.com/prudhvi1709/smart-cli/internal/llm"
)

// Client sends queries to the model with accumulated history and returns raw
// tagged text. History lives for one invocation and is never persisted.
type Client struct {
	registry    *llm.Registry
	cfg         config.AgentConfig
	model       string
	toolSummary string
	logger      *zap.Logger

	mu        sync.Mutex
	sessionID string
	history   []llm.ChatMessage
}

// New creates a Client bound to a model id ("" resolves the registry default).
func New(registry *llm.Registry, cfg config.AgentConfig, model, toolSummary string, logger *zap.Logger) *Client {
	return &Client{
		registry:    registry,
		cfg:         cfg,
		model:       model,
		toolSummary: toolSummary,
		logger:      logger,
		sessionID:   uuid.NewString(),
	}
}

// Model returns the model id this client resolves against the registry.
func (c *Client) Model() string {
	if c.model != "" {
		return c.model
	}
	return c.registry.DefaultModel()
}

// Ask sends the query with history ahead of it and returns the raw assistant
// text. Both the query and the reply are appended to the history.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	provider, route, err := c.registry.Resolve(c.model)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	messages := make([]llm.ChatMessage, 0, len(c.history)+2)
	messages = append(messages, llm.ChatMessage{Role: llm.RoleSystem, Content: buildSystemPrompt(c.toolSummary)})
	messages = append(messages, c.history...)
	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: query})
	c.mu.Unlock()

	req := llm.ChatRequest{
		Model:       route.Model,
		Messages:    messages,
		MaxTokens:   pickMaxTokens(c.cfg.MaxTokens, route.MaxTokens),
		Temperature: pickTemperature(c.cfg.Temperature, route.Temperature),
	}

	c.logger.Debug("model call",
		zap.String("session", c.sessionID),
		zap.String("provider", provider.Name()),
		zap.String("model", route.Model),
		zap.Int("history", len(messages)-2))

	resp, err := provider.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}

	c.mu.Lock()
	c.history = append(c.history,
		llm.ChatMessage{Role: llm.RoleUser, Content: query},
		llm.ChatMessage{Role: llm.RoleAssistant, Content: resp.Message.Content},
	)
	c.mu.Unlock()

	return resp.Message.Content, nil
}

// History returns a copy of the accumulated conversation turns.
func (c *Client) History() []llm.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.ChatMessage, len(c.history))
	copy(out, c.history)
	return out
}

func pickMaxTokens(agentTokens, routeTokens int) int {
	if routeTokens > 0 {
		return routeTokens
	}
	return agentTokens
}

func pickTemperature(agentTemp, routeTemp float64) float64 {
	if routeTemp > 0 {
		return routeTemp
	}
	return agentTemp
}
