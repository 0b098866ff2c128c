package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/metrics"
	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/aescanero/dago-node-analyzer/internal/routing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analyzer is one analysis unit.
type Analyzer interface {
	Domain() model.Domain
	Analyze(ctx context.Context, query model.Query) model.UnitResult
}

// RoutingParser turns planner output into a routing decision.
type RoutingParser interface {
	Parse(raw string) model.RoutingDecision
}

// Options holds the per-call timeouts. Zero disables a timeout.
type Options struct {
	PlannerTimeout time.Duration
	UnitTimeout    time.Duration
}

// Executor runs the routing, fan-out and join of one request.
type Executor struct {
	planner routing.Planner
	parser  RoutingParser
	units   map[model.Domain]Analyzer
	opts    Options
	logger  *zap.Logger
}

// NewExecutor wires the collaborators. Every known domain needs exactly one unit.
func NewExecutor(planner routing.Planner, parser RoutingParser, units []Analyzer, opts Options, logger *zap.Logger) (*Executor, error) {
	if planner == nil {
		return nil, fmt.Errorf("planner is required")
	}
	if parser == nil {
		return nil, fmt.Errorf("routing parser is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	byDomain := make(map[model.Domain]Analyzer, len(units))
	for _, u := range units {
		if u == nil {
			return nil, fmt.Errorf("nil analysis unit")
		}
		d := u.Domain()
		if !d.IsKnown() {
			return nil, fmt.Errorf("analysis unit has unknown domain %q", d)
		}
		if _, dup := byDomain[d]; dup {
			return nil, fmt.Errorf("duplicate analysis unit for domain %s", d)
		}
		byDomain[d] = u
	}
	for _, d := range model.KnownDomains() {
		if _, ok := byDomain[d]; !ok {
			return nil, fmt.Errorf("no analysis unit for domain %s", d)
		}
	}

	return &Executor{
		planner: planner,
		parser:  parser,
		units:   byDomain,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Run executes the workflow for query. The result always holds one entry per
// known domain. Collaborator failures are folded into the result; the only
// errors are an executor panic (ErrWorkflowPanic) and cancellation of ctx.
func (e *Executor) Run(ctx context.Context, query model.Query) (result *model.WorkflowResult, err error) {
	start := time.Now()
	log := e.logger.With(zap.String("request_id", query.ID()))
	m := newMachine()

	defer func() {
		if r := recover(); r != nil {
			log.Error("workflow panic recovered",
				zap.Any("panic", r),
				zap.Strings("trace", m.Trace()),
			)
			result = nil
			err = fmt.Errorf("%w: %v", ErrWorkflowPanic, r)
		}

		outcome := "success"
		switch {
		case err != nil && ctx.Err() != nil:
			outcome = "cancelled"
		case err != nil:
			outcome = "panic"
		case result.Summary.HadErrors:
			outcome = "partial"
		}
		metrics.WorkflowsCompleted.WithLabelValues(outcome).Inc()
		metrics.WorkflowDuration.Observe(time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decision, err := e.route(ctx, query, m)
	if err != nil {
		return nil, err
	}
	metrics.RoutingDecisions.WithLabelValues(string(decision.Method)).Inc()

	log.Info("routing decision",
		zap.Strings("targets", domainNames(decision.Targets)),
		zap.String("method", string(decision.Method)),
		zap.String("parse_error", decision.ParseError),
	)

	results := e.fanout(ctx, query, decision, m)
	if err := ctx.Err(); err != nil {
		log.Warn("workflow cancelled", zap.Error(err))
		return nil, err
	}

	m.transition(StateDone)
	summary := model.Summarize(results)

	log.Info("workflow complete",
		zap.Int("executed", summary.Executed),
		zap.Int("skipped", summary.Skipped),
		zap.Bool("had_errors", summary.HadErrors),
		zap.Duration("duration", time.Since(start)),
	)

	return &model.WorkflowResult{
		ID:      query.ID(),
		Routing: decision,
		Results: results,
		Summary: summary,
		Trace:   m.Trace(),
	}, nil
}

// route calls the planner and parses its output. A planner failure fails open
// to every domain; so does an explicitly empty route.
func (e *Executor) route(ctx context.Context, query model.Query, m *machine) (model.RoutingDecision, error) {
	planCtx := ctx
	if e.opts.PlannerTimeout > 0 {
		var cancel context.CancelFunc
		planCtx, cancel = context.WithTimeout(ctx, e.opts.PlannerTimeout)
		defer cancel()
	}

	raw, err := e.planner.Plan(planCtx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.RoutingDecision{}, ctxErr
		}
		e.logger.Warn("planner failed, selecting all domains",
			zap.String("request_id", query.ID()),
			zap.Error(err),
		)
		metrics.CollaboratorErrors.WithLabelValues("planner").Inc()
		m.transition(StateFanout)
		return model.DefaultRouting("", fmt.Sprintf("planner failed: %v", err)), nil
	}

	m.transition(StateRouting)
	decision := e.parser.Parse(raw)
	if len(decision.Targets) == 0 {
		fallback := model.DefaultRouting(raw, "planner selected no domains")
		fallback.Analysis = decision.Analysis
		decision = fallback
	}
	m.transition(StateFanout)
	return decision, nil
}

// fanout runs every selected unit concurrently and waits for all of them.
// Unselected domains get a skipped placeholder.
func (e *Executor) fanout(ctx context.Context, query model.Query, decision model.RoutingDecision, m *machine) map[model.Domain]model.UnitResult {
	known := model.KnownDomains()
	results := make(map[model.Domain]model.UnitResult, len(known))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(len(known))

	for _, d := range known {
		if !decision.Selects(d) {
			results[d] = model.SkippedResult(d)
			continue
		}
		unit := e.units[d]
		g.Go(func() error {
			r := e.invoke(ctx, unit, query)
			mu.Lock()
			results[d] = r
			mu.Unlock()
			return nil
		})
	}

	m.transition(StateJoining)
	_ = g.Wait()
	return results
}

// invoke runs one unit with its timeout, turning a panic into an error result.
func (e *Executor) invoke(ctx context.Context, unit Analyzer, query model.Query) (result model.UnitResult) {
	d := unit.Domain()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("analysis unit panic recovered",
				zap.String("request_id", query.ID()),
				zap.String("domain", string(d)),
				zap.Any("panic", r),
			)
			result = model.ErrorResult(d, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if e.opts.UnitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.UnitTimeout)
		defer cancel()
	}

	result = unit.Analyze(ctx, query)
	result.Domain = d
	return result
}

func domainNames(ds []model.Domain) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}
