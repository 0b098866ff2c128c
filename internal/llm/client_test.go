package llm

import (
	"context"
	"testing"

	"github.com/aescanero/dago-libs/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewWithoutKeyIsUnconfigured(t *testing.T) {
	c, err := New(Config{Provider: "anthropic"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, c.Available())

	_, err = c.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPortClientWithoutPort(t *testing.T) {
	c := NewPortClient(nil, Config{}, zaptest.NewLogger(t))
	assert.False(t, c.Available())

	_, err := c.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResponseContent(t *testing.T) {
	got, err := responseContent(&domain.LLMResponse{Content: `{"route":["usage"]}`})
	require.NoError(t, err)
	assert.Equal(t, `{"route":["usage"]}`, got)

	got, err = responseContent("plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text", got)

	_, err = responseContent(&domain.LLMResponse{Content: "  "})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = responseContent(42)
	assert.Error(t, err)
}

func TestJoinPrompts(t *testing.T) {
	assert.Equal(t, "user", joinPrompts("", "user"))
	assert.Equal(t, "sys\n\nuser", joinPrompts("sys", "user"))
}
