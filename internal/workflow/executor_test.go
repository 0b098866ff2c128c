package workflow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/analysis"
	"github.com/aescanero/dago-node-analyzer/internal/escalation"
	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/aescanero/dago-node-analyzer/internal/routing"
	"github.com/aescanero/dago-node-analyzer/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubPlanner struct {
	raw      string
	err      error
	panicMsg string
}

func (p *stubPlanner) Plan(context.Context, model.Query) (string, error) {
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	return p.raw, p.err
}

type stubUnit struct {
	domain  model.Domain
	status  model.Status
	panics  bool
	block   bool
	calls   int32
	started chan struct{}
}

func (u *stubUnit) Domain() model.Domain { return u.domain }

func (u *stubUnit) Analyze(ctx context.Context, query model.Query) model.UnitResult {
	atomic.AddInt32(&u.calls, 1)
	if u.started != nil {
		u.started <- struct{}{}
	}
	if u.panics {
		panic("unit exploded")
	}
	if u.block {
		<-ctx.Done()
		return model.ErrorResult(u.domain, "cancelled")
	}
	status := u.status
	if status == "" {
		status = model.StatusSuccess
	}
	return model.UnitResult{
		Domain:           u.domain,
		Status:           status,
		Detections:       []model.DetectionMatch{},
		Documents:        []model.DocumentRef{},
		ProcessingMethod: model.MethodRuleBased,
		Recommendations:  []string{"analysed " + query.Text()},
	}
}

func stubUnits() map[model.Domain]*stubUnit {
	out := map[model.Domain]*stubUnit{}
	for _, d := range model.KnownDomains() {
		out[d] = &stubUnit{domain: d}
	}
	return out
}

func newTestExecutor(t *testing.T, planner routing.Planner, units map[model.Domain]*stubUnit) *Executor {
	t.Helper()
	var list []Analyzer
	for _, d := range model.KnownDomains() {
		list = append(list, units[d])
	}
	exec, err := NewExecutor(planner, routing.NewParser(zaptest.NewLogger(t)), list,
		Options{PlannerTimeout: time.Second, UnitTimeout: time.Second}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return exec
}

func TestRunSelectedDomainsOnly(t *testing.T) {
	units := stubUnits()
	exec := newTestExecutor(t, &stubPlanner{raw: `{"analysis":"water use","route":["usage","UsageAgent","weather"]}`}, units)

	result, err := exec.Run(context.Background(), model.NewQuery("irrigation"))
	require.NoError(t, err)

	require.Len(t, result.Results, len(model.KnownDomains()))
	assert.Equal(t, []model.Domain{model.DomainUsage}, result.Routing.Targets)
	assert.Equal(t, model.RoutingPlanner, result.Routing.Method)
	assert.Equal(t, model.StatusSuccess, result.Results[model.DomainUsage].Status)
	assert.Equal(t, model.StatusSkipped, result.Results[model.DomainSource].Status)
	assert.Equal(t, model.StatusSkipped, result.Results[model.DomainPermissions].Status)

	assert.EqualValues(t, 1, units[model.DomainUsage].calls)
	assert.EqualValues(t, 0, units[model.DomainSource].calls)
	assert.EqualValues(t, 0, units[model.DomainPermissions].calls)

	assert.Equal(t, model.Summary{Executed: 1, Skipped: 2, RuleBasedCount: 1}, result.Summary)
	assert.Equal(t, []string{"start", "routing", "fanout", "joining", "done"}, result.Trace)
}

func TestRunKeywordFallback(t *testing.T) {
	units := stubUnits()
	exec := newTestExecutor(t, &stubPlanner{raw: "I will check the water source."}, units)

	result, err := exec.Run(context.Background(), model.NewQuery("where does it come from"))
	require.NoError(t, err)

	assert.Equal(t, []model.Domain{model.DomainSource}, result.Routing.Targets)
	assert.Equal(t, model.RoutingKeyword, result.Routing.Method)
	assert.NotEmpty(t, result.Routing.ParseError)
	assert.Equal(t, model.StatusSuccess, result.Results[model.DomainSource].Status)
	assert.Equal(t, model.StatusSkipped, result.Results[model.DomainUsage].Status)
}

func TestRunFailsOpen(t *testing.T) {
	tests := []struct {
		name    string
		planner *stubPlanner
	}{
		{name: "planner error", planner: &stubPlanner{err: errors.New("llm down")}},
		{name: "empty route", planner: &stubPlanner{raw: `{"route":[]}`}},
		{name: "garbage", planner: &stubPlanner{raw: "{{{ nothing here"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := stubUnits()
			exec := newTestExecutor(t, tt.planner, units)

			result, err := exec.Run(context.Background(), model.NewQuery("help"))
			require.NoError(t, err)

			assert.Equal(t, model.KnownDomains(), result.Routing.Targets)
			assert.Equal(t, model.RoutingDefault, result.Routing.Method)
			assert.NotEmpty(t, result.Routing.Clarifications)
			for _, d := range model.KnownDomains() {
				assert.EqualValues(t, 1, units[d].calls, d)
			}
			assert.Equal(t, 3, result.Summary.Executed)
		})
	}
}

func TestRunPlannerErrorSkipsRoutingState(t *testing.T) {
	exec := newTestExecutor(t, &stubPlanner{err: errors.New("timeout")}, stubUnits())

	result, err := exec.Run(context.Background(), model.NewQuery("help"))
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "fanout", "joining", "done"}, result.Trace)
	assert.Contains(t, result.Routing.ParseError, "planner failed")
}

func TestRunIsolatesUnitFailures(t *testing.T) {
	units := stubUnits()
	units[model.DomainSource].panics = true
	units[model.DomainUsage].status = model.StatusError
	exec := newTestExecutor(t, &stubPlanner{raw: `{"route":["source","usage","permissions"]}`}, units)

	result, err := exec.Run(context.Background(), model.NewQuery("lake irrigation permit"))
	require.NoError(t, err)

	source := result.Results[model.DomainSource]
	assert.Equal(t, model.StatusError, source.Status)
	assert.Contains(t, source.Message, "unit exploded")
	assert.Equal(t, model.StatusError, result.Results[model.DomainUsage].Status)
	assert.Equal(t, model.StatusSuccess, result.Results[model.DomainPermissions].Status)
	assert.True(t, result.Summary.HadErrors)
	assert.Equal(t, 3, result.Summary.Executed)
}

func TestRunIsIdempotent(t *testing.T) {
	exec := newTestExecutor(t, &stubPlanner{raw: `{"route":["permissions","source"]}`}, stubUnits())
	query := model.NewQuery("permit for a well")

	first, err := exec.Run(context.Background(), query)
	require.NoError(t, err)
	second, err := exec.Run(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, query.ID(), first.ID)
}

func TestRunRecoversExecutorPanic(t *testing.T) {
	exec := newTestExecutor(t, &stubPlanner{panicMsg: "planner bug"}, stubUnits())

	result, err := exec.Run(context.Background(), model.NewQuery("help"))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrWorkflowPanic)
	assert.Contains(t, err.Error(), "planner bug")
}

func TestRunCancelled(t *testing.T) {
	units := stubUnits()
	for _, u := range units {
		u.block = true
		u.started = make(chan struct{}, 1)
	}
	exec := newTestExecutor(t, &stubPlanner{raw: `{"route":["source","usage","permissions"]}`}, units)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for _, u := range units {
			<-u.started
		}
		cancel()
	}()

	result, err := exec.Run(ctx, model.NewQuery("help"))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	units := stubUnits()
	exec := newTestExecutor(t, &stubPlanner{raw: `{"route":["source"]}`}, units)

	_, err := exec.Run(ctx, model.NewQuery("help"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, units[model.DomainSource].calls)
}

func TestNewExecutorValidatesUnits(t *testing.T) {
	parser := routing.NewParser(nil)
	planner := &stubPlanner{}
	units := stubUnits()

	_, err := NewExecutor(planner, parser, []Analyzer{units[model.DomainSource], units[model.DomainUsage]}, Options{}, nil)
	assert.ErrorContains(t, err, "no analysis unit for domain permissions")

	_, err = NewExecutor(planner, parser, []Analyzer{
		units[model.DomainSource], units[model.DomainSource], units[model.DomainUsage], units[model.DomainPermissions],
	}, Options{}, nil)
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewExecutor(planner, parser, []Analyzer{&stubUnit{domain: "weather"}}, Options{}, nil)
	assert.ErrorContains(t, err, "unknown domain")

	_, err = NewExecutor(nil, parser, nil, Options{}, nil)
	assert.Error(t, err)
}

func TestMachineRejectsIllegalTransition(t *testing.T) {
	m := newMachine()
	m.transition(StateRouting)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrIllegalTransition)
		assert.Equal(t, []string{"start", "routing"}, m.Trace())
	}()
	m.transition(StateDone)
}

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, string, int) ([]model.DocumentRef, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestRunSearchFailureIsIsolated(t *testing.T) {
	logger := zaptest.NewLogger(t)
	policy, err := escalation.NewPolicy(escalation.Options{}, logger)
	require.NoError(t, err)

	var units []Analyzer
	for _, p := range analysis.DefaultProfiles() {
		var searcher search.Searcher = search.Noop{}
		if p.Domain == model.DomainSource {
			searcher = failingSearcher{}
		}
		unit, err := analysis.NewUnit(p, searcher, policy, nil, analysis.Options{}, logger)
		require.NoError(t, err)
		units = append(units, unit)
	}

	exec, err := NewExecutor(&stubPlanner{raw: `{"route":["source","usage","permissions"]}`},
		routing.NewParser(logger), units, Options{UnitTimeout: time.Second}, logger)
	require.NoError(t, err)

	result, err := exec.Run(context.Background(), model.NewQuery("irrigation from a well, need a water license"))
	require.NoError(t, err)

	source := result.Results[model.DomainSource]
	assert.Equal(t, model.StatusError, source.Status)
	assert.NotNil(t, source.Documents)
	assert.Empty(t, source.Documents)

	assert.Equal(t, model.StatusSuccess, result.Results[model.DomainUsage].Status)
	assert.Equal(t, model.StatusSuccess, result.Results[model.DomainPermissions].Status)
	assert.True(t, result.Summary.HadErrors)
	assert.Equal(t, 3, result.Summary.Executed)
}
