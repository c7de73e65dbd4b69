package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
	"github.com/fyrsmithlabs/docsmith/internal/engine"
	"github.com/fyrsmithlabs/docsmith/internal/logging"
	"github.com/fyrsmithlabs/docsmith/internal/metrics"
	"github.com/fyrsmithlabs/docsmith/internal/task"
)

// Config tunes the pipeline.
type Config struct {
	// TotalStepBudget is the engine-round budget B shared across phases.
	TotalStepBudget int

	// PlaceholderSentinels overrides DefaultPlaceholderSentinels when set.
	PlaceholderSentinels []string
}

// Orchestrator sequences phases through reasoning sessions, applies the
// required-action gate after each gated phase, repairs placeholder
// arguments before publish actions execute, and assembles the outcome.
type Orchestrator struct {
	planner   Planner
	session   *Session
	sentinels []string
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// New creates an orchestrator. The engine and executor must be safe for
// concurrent use: independent tasks may run at the same time, each with its
// own task-local state.
func New(eng engine.Engine, executor *actions.Executor, cfg Config, logger *logging.Logger, m *metrics.Metrics) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	sentinels := cfg.PlaceholderSentinels
	if len(sentinels) == 0 {
		sentinels = DefaultPlaceholderSentinels
	}
	return &Orchestrator{
		planner:   NewPlanner(cfg.TotalStepBudget),
		session:   NewSession(eng, executor, logger, m),
		sentinels: sentinels,
		logger:    logger.Named("orchestrator"),
		metrics:   m,
	}
}

// Run executes one documentation task to completion. It returns a non-nil
// Outcome unless the task is rejected up front, the engine becomes
// unavailable, or a required publish action fails at the collaborator.
func (o *Orchestrator) Run(ctx context.Context, t task.DocumentationTask) (*Outcome, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	ctx = logging.WithTaskID(ctx, t.ID)
	o.logger.Info(ctx, "task started",
		zap.String("kind", string(t.Kind)),
		zap.String("space_id", t.SpaceID),
	)

	phases := o.planner.Plan(t)
	retrieval, analysis, publish := phases[0], phases[1], phases[2]

	state := &executionState{}
	tools := actions.Registry()
	system := systemDirective(t)

	// Retrieval
	res, err := o.session.Run(ctx, SessionInput{
		Phase:       PhaseRetrieval,
		System:      system,
		User:        retrievalDirective(t),
		Tools:       tools,
		Budget:      retrieval.StepBudget,
		ForceAction: true,
	})
	if err != nil {
		return o.fail(ctx, t, err)
	}
	state.absorb(res)

	// RetrievalRecoveryCheck
	retrievalMissing, err := o.gate(ctx, t, retrieval, state, tools, nil)
	if err != nil {
		return o.fail(ctx, t, err)
	}

	// Analysis (ungated)
	res, err = o.session.Run(ctx, SessionInput{
		Phase:  PhaseAnalysis,
		System: system,
		User:   analysisDirective(t, state.lastText),
		Tools:  tools,
		Budget: analysis.StepBudget,
	})
	if err != nil {
		return o.fail(ctx, t, err)
	}
	state.absorb(res)
	draft := state.lastText

	// Publish
	repair := o.repairHook(state)
	res, err = o.session.Run(ctx, SessionInput{
		Phase:       PhasePublish,
		System:      system,
		User:        publishDirective(t, publish.Required, draft, state.entities),
		Tools:       tools,
		Budget:      publish.StepBudget,
		ForceAction: true,
		RepairCall:  repair,
	})
	if err != nil {
		return o.fail(ctx, t, err)
	}
	state.absorb(res)

	if err := publishFailure(res.Records, publish.Required); err != nil {
		return o.fail(ctx, t, err)
	}

	// PublishRecoveryCheck
	publishMissing, err := o.gate(ctx, t, publish, state, tools, repair)
	if err != nil {
		return o.fail(ctx, t, err)
	}

	// Done
	outcome := o.buildOutcome(t, state, append(retrievalMissing, publishMissing...))
	o.metrics.TaskFinished(string(t.Kind), outcomeLabel(outcome))
	o.logger.Info(ctx, "task finished",
		zap.Bool("success", outcome.Success),
		zap.Bool("partial", outcome.Partial),
		zap.String("page_id", outcome.PageID),
		zap.Int("actions", len(state.records)),
	)
	return outcome, nil
}

// gate applies the required-action check for a gated phase and, on a miss,
// runs exactly one recovery session at half the phase budget. The recovery
// result is merged whether or not it closes the gap; the residual missing
// set is returned for outcome classification.
func (o *Orchestrator) gate(ctx context.Context, t task.DocumentationTask, phase Phase, state *executionState, tools []actions.Spec, repair func(engine.ToolCall) engine.ToolCall) ([]actions.Name, error) {
	missing := state.missing(phase)
	if len(missing) == 0 {
		return nil, nil
	}

	o.logger.Warn(ctx, "required actions missing, running recovery",
		zap.String("phase", string(phase.Name)),
		zap.Int("missing", len(missing)),
	)
	o.metrics.RecoveryAttempted(string(phase.Name))

	res, err := o.session.Run(ctx, SessionInput{
		Phase:       phase.Name,
		System:      systemDirective(t),
		User:        recoveryDirective(state.lastText, missing),
		Tools:       tools,
		Budget:      phase.StepBudget / 2,
		ForceAction: true,
		RepairCall:  repair,
	})
	if err != nil {
		return nil, err
	}
	state.absorb(res)

	if phase.Name == PhasePublish {
		if err := publishFailure(res.Records, phase.Required); err != nil {
			return nil, err
		}
	}

	return state.missing(phase), nil
}

// repairHook rewrites update-page arguments in flight, replacing placeholder
// values with entities discovered so far in the run.
func (o *Orchestrator) repairHook(state *executionState) func(engine.ToolCall) engine.ToolCall {
	return func(call engine.ToolCall) engine.ToolCall {
		if call.Name != actions.ActionUpdatePage {
			return call
		}
		repaired, count := RepairArguments(call.Arguments, state.entities, o.sentinels)
		if count > 0 {
			call.Arguments = repaired
			for i := 0; i < count; i++ {
				o.metrics.ArgumentRepaired()
			}
		}
		return call
	}
}

// publishFailure reports a collaborator failure on any required publish
// action. Such failures are fatal: a half-applied write must surface as an
// error, not an Outcome.
func publishFailure(records []Record, required []actions.Name) error {
	requiredSet := make(map[actions.Name]bool, len(required))
	for _, name := range required {
		requiredSet[name] = true
	}
	for _, r := range records {
		if r.IsError && requiredSet[r.Action] {
			return fmt.Errorf("%w: %s: %s", ErrPublishActionFailed, r.Action, r.Result)
		}
	}
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, t task.DocumentationTask, err error) (*Outcome, error) {
	o.metrics.TaskFinished(string(t.Kind), "failed")
	o.logger.Error(ctx, "task failed", zap.Error(err))
	return nil, err
}

// buildOutcome classifies the run. An empty residual missing set is a
// success. A missing publish-critical action means the write itself is
// unconfirmed: fatal enough to report as incomplete for Update tasks, where
// a stale page is worse than no page, but tolerable as a partial result for
// Generate tasks, where no page exists yet to corrupt.
func (o *Orchestrator) buildOutcome(t task.DocumentationTask, state *executionState, missing []actions.Name) *Outcome {
	pageID, pageTitle := state.publishedPage()
	if pageTitle == "" {
		pageTitle = state.entities.PageTitle
	}

	if len(missing) == 0 {
		return &Outcome{
			Success:   true,
			PageID:    pageID,
			PageTitle: pageTitle,
			Message:   "documentation published",
		}
	}

	outcome := &Outcome{
		Partial:        true,
		MissingActions: missing,
		PageID:         pageID,
		PageTitle:      pageTitle,
	}

	if t.Kind == task.KindUpdate && intersects(missing, publishCritical(t)) {
		outcome.Message = fmt.Sprintf("incomplete update: required publish actions never executed: %s", nameList(missing))
	} else {
		outcome.Message = fmt.Sprintf("partial completion: actions never executed: %s", nameList(missing))
	}
	return outcome
}

func outcomeLabel(outcome *Outcome) string {
	if outcome.Success {
		return "success"
	}
	return "partial"
}

func intersects(a, b []actions.Name) bool {
	set := make(map[actions.Name]bool, len(b))
	for _, name := range b {
		set[name] = true
	}
	for _, name := range a {
		if set[name] {
			return true
		}
	}
	return false
}

func nameList(names []actions.Name) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += string(name)
	}
	return out
}
