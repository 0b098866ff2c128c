package enhance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/llm"
	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubClient struct {
	reply      string
	err        error
	wait       bool
	lastSystem string
	lastUser   string
}

func (s *stubClient) Available() bool { return true }

func (s *stubClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastSystem, s.lastUser = systemPrompt, userPrompt
	if s.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func newTestGateway(t *testing.T, client llm.Client) *Gateway {
	t.Helper()
	g, err := NewGateway(client, 50*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)
	return g
}

func ruleResult() model.UnitResult {
	return model.UnitResult{
		Detections:  []model.DetectionMatch{{Keyword: "irrigation", Category: "agricultural"}},
		Suggestions: []model.Suggestion{{FieldID: "V1Purpose", Value: "irrigation"}},
	}
}

func TestEnhanceParsesDomainRecommendations(t *testing.T) {
	client := &stubClient{reply: "Here you go:\n```json\n" +
		`{"enhanced_usage":[{"purpose":"irrigation"}],"efficiency_recommendations":["Install drip lines",{"item":"Meter the intake"}]}` +
		"\n```"}
	g := newTestGateway(t, client)

	query := model.NewQuery("irrigation for \"orchard\" & pasture", model.FormField{ID: "V1Purpose", Label: "Purpose of use"})
	docs := []model.DocumentRef{{Title: "Irrigation guide", Snippet: "Drip irrigation saves water"}}

	payload, err := g.Enhance(context.Background(), model.DomainUsage, query, ruleResult(), docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"Install drip lines", "Meter the intake"}, payload.Recommendations)
	assert.Contains(t, payload.Data, "enhanced_usage")

	assert.Contains(t, client.lastSystem, "BC water licensing")
	assert.Contains(t, client.lastUser, `irrigation for "orchard" & pasture`)
	assert.Contains(t, client.lastUser, "- Purpose of use: (empty)")
	assert.Contains(t, client.lastUser, "- irrigation (agricultural)")
	assert.Contains(t, client.lastUser, "- V1Purpose = irrigation")
	assert.Contains(t, client.lastUser, "- Irrigation guide: Drip irrigation saves water")
	assert.Contains(t, client.lastUser, "efficiency_recommendations")
}

func TestEnhanceFallsBackToGenericRecommendationKey(t *testing.T) {
	g := newTestGateway(t, &stubClient{reply: `{"recommendations":["Check consultation duties"]}`})

	payload, err := g.Enhance(context.Background(), model.DomainPermissions, model.NewQuery("permit"), model.UnitResult{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Check consultation duties"}, payload.Recommendations)
}

func TestEnhanceErrors(t *testing.T) {
	ctx := context.Background()
	query := model.NewQuery("lake")

	t.Run("unknown domain", func(t *testing.T) {
		g := newTestGateway(t, &stubClient{reply: "{}"})
		_, err := g.Enhance(ctx, model.Domain("billing"), query, model.UnitResult{}, nil)
		assert.ErrorIs(t, err, ErrUnknownDomain)
	})

	t.Run("unavailable", func(t *testing.T) {
		g := newTestGateway(t, llm.Unconfigured{})
		assert.False(t, g.Available())
		_, err := g.Enhance(ctx, model.DomainSource, query, model.UnitResult{}, nil)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, "unavailable", Outcome(err))
	})

	t.Run("call failed", func(t *testing.T) {
		cause := errors.New("connection reset")
		g := newTestGateway(t, &stubClient{err: cause})
		_, err := g.Enhance(ctx, model.DomainSource, query, model.UnitResult{}, nil)

		var callErr *CallFailedError
		require.ErrorAs(t, err, &callErr)
		assert.ErrorIs(t, err, ErrCallFailed)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "call_failed", Outcome(err))
	})

	t.Run("timeout maps to call failed", func(t *testing.T) {
		g := newTestGateway(t, &stubClient{wait: true})
		_, err := g.Enhance(ctx, model.DomainSource, query, model.UnitResult{}, nil)
		assert.ErrorIs(t, err, ErrCallFailed)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("unparseable", func(t *testing.T) {
		g := newTestGateway(t, &stubClient{reply: "I cannot help with that {not json"})
		_, err := g.Enhance(ctx, model.DomainSource, query, model.UnitResult{}, nil)

		var parseErr *UnparseableResponseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "I cannot help with that {not json", parseErr.Raw)
		assert.Equal(t, "unparseable", Outcome(err))
	})

	t.Run("balanced but invalid json", func(t *testing.T) {
		g := newTestGateway(t, &stubClient{reply: "{recommendations: [oops]}"})
		_, err := g.Enhance(ctx, model.DomainSource, query, model.UnitResult{}, nil)
		assert.ErrorIs(t, err, ErrUnparseableResponse)
	})
}

func TestNewGatewayDefaultsToUnconfigured(t *testing.T) {
	g, err := NewGateway(nil, 0, nil)
	require.NoError(t, err)
	assert.False(t, g.Available())
}
