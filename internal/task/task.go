// Package task defines the immutable documentation task that drives one
// pipeline run, and its admission checks. Validation happens before any
// collaborator is called; a task that fails it never reaches the pipeline.
package task

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Kind selects what the pipeline does with a task.
type Kind string

const (
	// KindGenerate creates new documentation for a source file.
	KindGenerate Kind = "generate"

	// KindUpdate revises existing documentation after a code change.
	KindUpdate Kind = "update"
)

var (
	// ErrInvalidTask indicates a malformed task (missing required fields).
	ErrInvalidTask = errors.New("invalid documentation task")

	// ErrInvalidReference indicates a malformed commit identifier.
	ErrInvalidReference = errors.New("invalid commit reference")
)

// commitTokenPattern is the revision-token shape check for commit IDs.
var commitTokenPattern = regexp.MustCompile(`^[0-9a-f]{5,40}$`)

// commitPlaceholders are literal stand-ins sometimes passed through from
// templated callers instead of a real revision.
var commitPlaceholders = map[string]bool{
	"[commit_id]": true,
	"[commit]":    true,
	"commit_id":   true,
}

// DocumentationTask is the immutable input to one pipeline run.
type DocumentationTask struct {
	// ID correlates all logs and records of one run.
	ID string `json:"id"`

	Kind Kind `json:"kind"`

	// SpaceID is the Confluence space the page lives in. Always required.
	SpaceID string `json:"space_id"`

	// FilePath is the source file to document. Required for Generate.
	FilePath string `json:"file_path,omitempty"`

	// CommitID is the revision whose change drives an Update.
	CommitID string `json:"commit_id,omitempty"`

	// PageID is the existing page to update, when already known.
	PageID string `json:"page_id,omitempty"`

	// ParentPageID optionally roots a newly created page.
	ParentPageID string `json:"parent_page_id,omitempty"`
}

// NewGenerate builds a Generate task with a fresh ID.
func NewGenerate(spaceID, filePath, parentPageID string) DocumentationTask {
	return DocumentationTask{
		ID:           uuid.NewString(),
		Kind:         KindGenerate,
		SpaceID:      spaceID,
		FilePath:     filePath,
		ParentPageID: parentPageID,
	}
}

// NewUpdate builds an Update task with a fresh ID. pageID may be empty when
// the page must be discovered during the run.
func NewUpdate(spaceID, commitID, pageID string) DocumentationTask {
	return DocumentationTask{
		ID:       uuid.NewString(),
		Kind:     KindUpdate,
		SpaceID:  spaceID,
		CommitID: commitID,
		PageID:   pageID,
	}
}

// Validate checks required fields per task kind. It returns ErrInvalidTask
// for structural problems and ErrInvalidReference for malformed commit IDs.
func (t DocumentationTask) Validate() error {
	if t.SpaceID == "" {
		return fmt.Errorf("%w: space id is required", ErrInvalidTask)
	}

	switch t.Kind {
	case KindGenerate:
		if t.FilePath == "" {
			return fmt.Errorf("%w: generate requires a file path", ErrInvalidTask)
		}
	case KindUpdate:
		if err := ValidateCommitID(t.CommitID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTask, t.Kind)
	}

	return nil
}

// ValidateCommitID rejects empty values, known placeholder strings, and
// anything failing the revision-token shape check.
func ValidateCommitID(commitID string) error {
	if commitID == "" {
		return fmt.Errorf("%w: commit id is empty", ErrInvalidReference)
	}
	if commitPlaceholders[commitID] {
		return fmt.Errorf("%w: commit id %q is a placeholder", ErrInvalidReference, commitID)
	}
	if !commitTokenPattern.MatchString(commitID) {
		return fmt.Errorf("%w: commit id %q is not a revision token", ErrInvalidReference, commitID)
	}
	return nil
}
