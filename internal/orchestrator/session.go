package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
	"github.com/fyrsmithlabs/docsmith/internal/engine"
	"github.com/fyrsmithlabs/docsmith/internal/logging"
	"github.com/fyrsmithlabs/docsmith/internal/metrics"
)

// Session runs one bounded conversation with the reasoning engine. Each
// round the engine either emits final text, ending the loop, or requests
// action executions whose results are appended to the conversation before
// the next round. Exhausting the budget is not an error; the session returns
// whatever it accumulated.
type Session struct {
	engine   engine.Engine
	executor *actions.Executor
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewSession creates a session runner over the given engine and executor.
func NewSession(eng engine.Engine, executor *actions.Executor, logger *logging.Logger, m *metrics.Metrics) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		engine:   eng,
		executor: executor,
		logger:   logger,
		metrics:  m,
	}
}

// SessionInput configures one conversation.
type SessionInput struct {
	Phase  PhaseName
	System string
	User   string
	Tools  []actions.Spec

	// Budget caps engine round-trips.
	Budget int

	// ForceAction requires the engine to request at least one action in the
	// first round, defeating engines that try to answer without data.
	ForceAction bool

	// RepairCall, when set, rewrites each tool call's arguments before
	// execution. Used by the publish phase for placeholder repair.
	RepairCall func(engine.ToolCall) engine.ToolCall
}

// SessionResult is the conversation's free text plus the ordered transcript
// of action invocations.
type SessionResult struct {
	Text    string
	Records []Record
}

// Run executes the conversation. A transport failure or malformed engine
// response fails fast with engine.ErrUnavailable; the caller treats that as
// fatal for the whole task.
func (s *Session) Run(ctx context.Context, in SessionInput) (*SessionResult, error) {
	var (
		history []engine.Exchange
		records []Record
		text    string
	)

	rounds := 0
	for round := 0; round < in.Budget; round++ {
		rounds = round + 1

		reply, err := s.engine.Invoke(ctx, engine.Request{
			System:       in.System,
			User:         in.User,
			Tools:        in.Tools,
			History:      history,
			ForceToolUse: in.ForceAction && round == 0,
		})
		if err != nil {
			return nil, err
		}

		if reply.Text != "" {
			text = reply.Text
		}
		if len(reply.ToolCalls) == 0 {
			break
		}

		for _, call := range reply.ToolCalls {
			if in.RepairCall != nil {
				call = in.RepairCall(call)
			}

			result := s.executor.Execute(ctx, call.Name, call.Arguments)
			payload := result.Payload()

			s.logger.Debug(ctx, "action executed",
				zap.String("phase", string(in.Phase)),
				zap.String("action", string(call.Name)),
				zap.Bool("is_error", result.IsError),
			)

			records = append(records, Record{
				Phase:     in.Phase,
				Action:    call.Name,
				Arguments: call.Arguments,
				Result:    payload,
				Value:     result.Value,
				IsError:   result.IsError,
			})
			history = append(history, engine.Exchange{Call: call, Result: payload})
		}
	}

	s.metrics.SessionRounds(rounds)
	s.logger.Debug(ctx, "session finished",
		zap.String("phase", string(in.Phase)),
		zap.Int("rounds", rounds),
		zap.Int("actions", len(records)),
	)

	return &SessionResult{Text: text, Records: records}, nil
}
