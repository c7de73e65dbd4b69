// Package engine defines the reasoning engine boundary. The engine is an
// external, non-deterministic collaborator: each round it either returns
// final text or requests tool calls. Tests substitute a scripted fake; the
// production implementation sits on langchaingo.
package engine

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
)

// ErrUnavailable indicates the remote engine could not be reached or
// returned a malformed response. The pipeline treats this as fatal for the
// whole task.
var ErrUnavailable = errors.New("reasoning engine unavailable")

// ToolCall is one action execution requested by the engine.
type ToolCall struct {
	// ID is the engine-assigned call id, echoed back with the result.
	ID string

	Name      actions.Name
	Arguments map[string]any
}

// Exchange pairs a completed tool call with the payload returned to the
// engine for it.
type Exchange struct {
	Call   ToolCall
	Result string
}

// Request is one round-trip to the engine. The engine is stateless; the full
// conversation so far is carried in the request.
type Request struct {
	// System is the system directive for the conversation.
	System string

	// User is the user directive that opened the conversation.
	User string

	// Tools is the action catalogue offered to the engine.
	Tools []actions.Spec

	// History holds all tool exchanges completed in earlier rounds.
	History []Exchange

	// ForceToolUse biases the engine toward requesting at least one tool
	// call before answering with text.
	ForceToolUse bool
}

// Reply is the engine's response to one round. A reply with no tool calls
// ends the conversation.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

// Engine is a single-round reasoning engine client. Implementations must be
// safe for concurrent use by independent pipeline runs.
type Engine interface {
	Invoke(ctx context.Context, req Request) (*Reply, error)
}
