package orchestrator

import (
	"errors"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
)

// PhaseName identifies one pipeline phase.
type PhaseName string

const (
	// PhaseRetrieval gathers source and page context through tool calls.
	PhaseRetrieval PhaseName = "retrieval"

	// PhaseAnalysis synthesizes documentation text. No side effects are
	// required of it, so it is ungated.
	PhaseAnalysis PhaseName = "analysis"

	// PhasePublish converts and writes the page.
	PhasePublish PhaseName = "publish"
)

// ErrPublishActionFailed indicates a collaborator failure during a required
// publish action. The task terminates without an Outcome.
var ErrPublishActionFailed = errors.New("publish action failed")

// Phase is one bounded segment of the pipeline.
type Phase struct {
	Name PhaseName

	// StepBudget caps engine round-trips for the phase's session.
	StepBudget int

	// Required lists the actions that must have executed by the end of the
	// phase. Empty for ungated phases.
	Required []actions.Name
}

// Record is one action invocation observed during a run. Records are
// append-only and owned by the run that produced them.
type Record struct {
	Phase     PhaseName      `json:"phase"`
	Action    actions.Name   `json:"action"`
	Arguments map[string]any `json:"arguments"`

	// Result is the payload handed back to the engine.
	Result string `json:"result"`

	// Value is the typed collaborator result, kept for entity harvesting.
	Value any `json:"-"`

	IsError bool `json:"is_error"`
}

// Entities is the discovered-entities cache: real identifiers harvested
// opportunistically from get-page and find-page-by-title results. It is
// never cleared during a run; later reads overwrite earlier ones.
type Entities struct {
	PageID      string
	PageTitle   string
	PageVersion int
}

// Outcome is the single externally observable result of a run.
type Outcome struct {
	Success bool `json:"success"`

	// Partial marks a run that finished but left required actions
	// unconfirmed. Partial outcomes are returns, not errors.
	Partial bool `json:"partial"`

	MissingActions []actions.Name `json:"missing_actions,omitempty"`

	PageID    string `json:"page_id,omitempty"`
	PageTitle string `json:"page_title,omitempty"`

	Message string `json:"message"`
}

// executionState is the accumulated mutable state of one run. It has a
// single writer (the orchestrator) and dies with the task.
type executionState struct {
	records  []Record
	lastText string
	entities Entities
}

// absorb appends a session's records, refreshes the latest free text, and
// harvests discovered entities.
func (s *executionState) absorb(res *SessionResult) {
	s.records = append(s.records, res.Records...)
	if res.Text != "" {
		s.lastText = res.Text
	}

	for _, r := range res.Records {
		if r.IsError {
			continue
		}
		switch r.Action {
		case actions.ActionGetPage:
			if p, ok := r.Value.(*actions.Page); ok && p != nil {
				s.entities.PageID = p.ID
				s.entities.PageTitle = p.Title
				s.entities.PageVersion = p.Version
			}
		case actions.ActionFindPageByTitle:
			if m, ok := r.Value.(map[string]string); ok {
				if id := m["page_id"]; id != "" {
					s.entities.PageID = id
				}
				if title := m["title"]; title != "" {
					s.entities.PageTitle = title
				}
			}
		}
	}
}

// missing returns the phase's required actions that never appear in the
// phase's records, in declaration order.
func (s *executionState) missing(phase Phase) []actions.Name {
	executed := make(map[actions.Name]bool)
	for _, r := range s.records {
		if r.Phase == phase.Name {
			executed[r.Action] = true
		}
	}

	var missing []actions.Name
	for _, name := range phase.Required {
		if !executed[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// publishedPage returns the page id and title from the most recent
// successful create-page or update-page record.
func (s *executionState) publishedPage() (pageID, title string) {
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.IsError {
			continue
		}
		if r.Action != actions.ActionCreatePage && r.Action != actions.ActionUpdatePage {
			continue
		}
		if id, ok := r.Value.(string); ok {
			pageID = id
		}
		if t, ok := r.Arguments["title"].(string); ok {
			title = t
		}
		return pageID, title
	}
	return "", ""
}
