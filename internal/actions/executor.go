package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Page is a page store document as seen by the pipeline.
type Page struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version int    `json:"version"`
	Content string `json:"content"`
}

// DiffResult is a commit diff as seen by the pipeline.
type DiffResult struct {
	Patch        string   `json:"patch"`
	ChangedFiles []string `json:"changed_files"`
}

// CommitInfo is one history entry for a file.
type CommitInfo struct {
	ID            string    `json:"id"`
	Message       string    `json:"message"`
	Date          time.Time `json:"date"`
	IsLogicChange bool      `json:"is_logic_change"`
}

// PageStore is the page storage collaborator boundary.
type PageStore interface {
	CreatePage(ctx context.Context, spaceID, title, content, parentID string) (string, error)
	UpdatePage(ctx context.Context, pageID, title, content string, version int) (string, error)
	GetPage(ctx context.Context, pageID string) (*Page, error)
	FindPageByTitle(ctx context.Context, spaceID, title string) (string, error)
}

// SourceReader is the source-control collaborator boundary.
type SourceReader interface {
	ReadFile(ctx context.Context, path, revision string) (string, error)
	Diff(ctx context.Context, commitID string) (*DiffResult, error)
	ListInternalDependencies(ctx context.Context, path string) ([]string, error)
	History(ctx context.Context, path string, limit int) ([]CommitInfo, error)
}

// Converter is the text converter collaborator boundary.
type Converter interface {
	ToMarkup(ctx context.Context, markdown string) (string, error)
}

// Result is the uniform outcome of one action execution. Collaborator
// failures are normalized here rather than raised, so the transcript always
// has something to feed back to the engine.
type Result struct {
	Value   any    `json:"value,omitempty"`
	Err     string `json:"error,omitempty"`
	IsError bool   `json:"is_error"`
}

// Payload renders the result as the string handed back to the engine.
func (r Result) Payload() string {
	if r.IsError {
		return fmt.Sprintf("error: %s", r.Err)
	}
	data, err := json.Marshal(r.Value)
	if err != nil {
		return fmt.Sprintf("error: unencodable result: %v", err)
	}
	return string(data)
}

// Defaults supplies task-level fallbacks for arguments the engine may omit.
type Defaults struct {
	SpaceID      string
	ParentPageID string
	HistoryLimit int
}

// Executor binds action names to collaborator calls.
type Executor struct {
	pages     PageStore
	source    SourceReader
	converter Converter
	defaults  Defaults
}

// NewExecutor creates an executor over the given collaborators.
func NewExecutor(pages PageStore, source SourceReader, converter Converter, defaults Defaults) *Executor {
	if defaults.HistoryLimit <= 0 {
		defaults.HistoryLimit = 10
	}
	return &Executor{
		pages:     pages,
		source:    source,
		converter: converter,
		defaults:  defaults,
	}
}

// Execute runs one action and normalizes its outcome. Unknown action names
// and argument errors are reported as error results, not panics: the engine
// chose the name and arguments, and it gets to see what went wrong.
func (e *Executor) Execute(ctx context.Context, name Name, args map[string]any) Result {
	value, err := e.dispatch(ctx, name, args)
	if err != nil {
		return Result{Err: err.Error(), IsError: true}
	}
	return Result{Value: value}
}

func (e *Executor) dispatch(ctx context.Context, name Name, args map[string]any) (any, error) {
	switch name {
	case ActionReadFile:
		path, err := stringArg(args, "path", true)
		if err != nil {
			return nil, err
		}
		revision, _ := stringArg(args, "revision", false)
		return e.source.ReadFile(ctx, path, revision)

	case ActionDiffCommit:
		commitID, err := stringArg(args, "commit_id", true)
		if err != nil {
			return nil, err
		}
		diff, err := e.source.Diff(ctx, commitID)
		if err != nil {
			return nil, err
		}
		return diff.Patch, nil

	case ActionListChangedFiles:
		commitID, err := stringArg(args, "commit_id", true)
		if err != nil {
			return nil, err
		}
		diff, err := e.source.Diff(ctx, commitID)
		if err != nil {
			return nil, err
		}
		return diff.ChangedFiles, nil

	case ActionListInternalDependencies:
		path, err := stringArg(args, "path", true)
		if err != nil {
			return nil, err
		}
		return e.source.ListInternalDependencies(ctx, path)

	case ActionGetHistory:
		path, err := stringArg(args, "path", true)
		if err != nil {
			return nil, err
		}
		limit := intArg(args, "limit", e.defaults.HistoryLimit)
		return e.source.History(ctx, path, limit)

	case ActionGetPage:
		pageID, err := stringArg(args, "page_id", true)
		if err != nil {
			return nil, err
		}
		return e.pages.GetPage(ctx, pageID)

	case ActionFindPageByTitle:
		title, err := stringArg(args, "title", true)
		if err != nil {
			return nil, err
		}
		spaceID, _ := stringArg(args, "space_id", false)
		if spaceID == "" {
			spaceID = e.defaults.SpaceID
		}
		pageID, err := e.pages.FindPageByTitle(ctx, spaceID, title)
		if err != nil {
			return nil, err
		}
		return map[string]string{"page_id": pageID, "title": title}, nil

	case ActionCreatePage:
		title, err := stringArg(args, "title", true)
		if err != nil {
			return nil, err
		}
		content, err := stringArg(args, "content", true)
		if err != nil {
			return nil, err
		}
		spaceID, _ := stringArg(args, "space_id", false)
		if spaceID == "" {
			spaceID = e.defaults.SpaceID
		}
		parentID, _ := stringArg(args, "parent_id", false)
		if parentID == "" {
			parentID = e.defaults.ParentPageID
		}
		return e.pages.CreatePage(ctx, spaceID, title, content, parentID)

	case ActionUpdatePage:
		pageID, err := stringArg(args, "page_id", true)
		if err != nil {
			return nil, err
		}
		title, err := stringArg(args, "title", true)
		if err != nil {
			return nil, err
		}
		content, err := stringArg(args, "content", true)
		if err != nil {
			return nil, err
		}
		version := intArg(args, "version", 0)
		return e.pages.UpdatePage(ctx, pageID, title, content, version)

	case ActionConvertToMarkup:
		markdown, err := stringArg(args, "markdown", true)
		if err != nil {
			return nil, err
		}
		return e.converter.ToMarkup(ctx, markdown)

	default:
		return nil, fmt.Errorf("unknown action %q", name)
	}
}

// stringArg extracts a string argument. JSON-decoded arguments may carry any
// scalar type, so non-strings are rejected rather than coerced.
func stringArg(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required argument %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	if required && s == "" {
		return "", fmt.Errorf("argument %q must not be empty", key)
	}
	return s, nil
}

// intArg extracts an integer argument, tolerating the float64 that
// encoding/json produces for all numbers.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}
