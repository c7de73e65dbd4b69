// Package orchestrator implements the phased tool-orchestration pipeline
// that turns one documentation task into a bounded, gated, multi-round
// conversation with a reasoning engine.
//
// A run moves through three phases, each a separate reasoning session:
//
//	Retrieval -> Analysis -> Publish
//
// Retrieval and Publish are gated: after the session, the orchestrator
// checks that every required action for the phase was actually invoked. A
// failed gate triggers exactly one recovery session at half the phase
// budget, naming the missing actions explicitly. Recovery results are merged
// whether or not they close the gap; there is no second attempt and no
// backtracking to an earlier phase.
//
// Before publish-phase tool calls execute, placeholder arguments the engine
// invented (a bracketed "[Retrieved pageId]" token, a generic "123") are
// overwritten with real identifiers harvested earlier in the run from
// get-page and find-page-by-title results. The repair is a single
// best-effort pass over untrusted engine output, implemented as a pure
// function so it can be tested without a live engine.
//
// Engine unavailability and publish-phase collaborator failures are fatal
// for the whole task: the error propagates and no Outcome is produced. All
// other incompleteness is expressed as a non-fatal Outcome with
// Success=false, so callers can tell "nothing happened, try again" from
// "ran, but could not confirm the write".
package orchestrator
