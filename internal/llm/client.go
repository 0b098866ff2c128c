package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	adapters "github.com/aescanero/dago-adapters/pkg/llm"
	"github.com/aescanero/dago-libs/pkg/domain"
	"github.com/aescanero/dago-libs/pkg/ports"
	"go.uber.org/zap"
)

var (
	// ErrUnavailable is returned when no LLM provider is configured
	ErrUnavailable = errors.New("llm client not configured")

	// ErrEmptyResponse is returned when the provider answers with no text
	ErrEmptyResponse = errors.New("llm returned an empty response")
)

// Client is the text-in/text-out LLM collaborator.
type Client interface {
	// Available reports whether calls can be attempted at all.
	Available() bool

	// Complete sends a system and a user prompt and returns the raw reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config configures the provider-backed client.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// New returns a provider-backed client, or an Unconfigured client when no API
// key is set.
func New(cfg Config, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		logger.Warn("llm api key not provided (enhancement and llm planning disabled)")
		return Unconfigured{}, nil
	}

	port, err := adapters.NewClient(&adapters.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Logger:   logger.Named("llm-adapter"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm client: %w", err)
	}

	return NewPortClient(port, cfg, logger), nil
}

// Unconfigured is the client used when no provider credentials exist.
type Unconfigured struct{}

// Available always reports false.
func (Unconfigured) Available() bool { return false }

// Complete always fails with ErrUnavailable.
func (Unconfigured) Complete(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}

// PortClient adapts a dago LLM port to Client.
type PortClient struct {
	port      ports.LLMClient
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewPortClient wraps an already constructed port.
func NewPortClient(port ports.LLMClient, cfg Config, logger *zap.Logger) *PortClient {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &PortClient{
		port:      port,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// Available reports whether a port is attached.
func (c *PortClient) Available() bool { return c != nil && c.port != nil }

// Complete calls the provider. The system prompt is sent ahead of the user
// prompt in a single user message so every provider accepts it.
func (c *PortClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := &domain.LLMRequest{
		Model: c.model,
		Messages: []domain.Message{
			{
				Role:    "user",
				Content: joinPrompts(systemPrompt, userPrompt),
			},
		},
		MaxTokens: c.maxTokens,
	}

	start := time.Now()
	respInterface, err := c.port.GenerateCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm completion failed: %w", err)
	}

	content, err := responseContent(respInterface)
	if err != nil {
		return "", err
	}

	c.logger.Debug("llm completion received",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("chars", len(content)),
	)
	return content, nil
}

func joinPrompts(systemPrompt, userPrompt string) string {
	if systemPrompt == "" {
		return userPrompt
	}
	return systemPrompt + "\n\n" + userPrompt
}

// responseContent extracts text from the port's untyped response.
func responseContent(resp interface{}) (string, error) {
	var content string
	switch r := resp.(type) {
	case *domain.LLMResponse:
		if r == nil {
			return "", ErrEmptyResponse
		}
		content = r.Content
	case domain.LLMResponse:
		content = r.Content
	case string:
		content = r
	default:
		return "", fmt.Errorf("unexpected response type from LLM: %T", resp)
	}

	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
