package orchestrator

import (
	"context"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
	"github.com/fyrsmithlabs/docsmith/internal/engine"
)

// scriptedEngine replays a fixed sequence of replies, recording every
// request it sees. Once the script runs out it answers with plain text,
// which ends any session loop.
type scriptedEngine struct {
	replies  []*engine.Reply
	requests []engine.Request

	failAt  int
	failErr error
}

func newScriptedEngine(replies ...*engine.Reply) *scriptedEngine {
	return &scriptedEngine{replies: replies, failAt: -1}
}

func (e *scriptedEngine) Invoke(_ context.Context, req engine.Request) (*engine.Reply, error) {
	idx := len(e.requests)
	e.requests = append(e.requests, req)

	if e.failErr != nil && idx == e.failAt {
		return nil, e.failErr
	}
	if idx >= len(e.replies) {
		return &engine.Reply{Text: "nothing further"}, nil
	}
	return e.replies[idx], nil
}

func textReply(text string) *engine.Reply {
	return &engine.Reply{Text: text}
}

func callsReply(calls ...engine.ToolCall) *engine.Reply {
	return &engine.Reply{ToolCalls: calls}
}

func call(name actions.Name, args map[string]any) engine.ToolCall {
	return engine.ToolCall{ID: "call-" + string(name), Name: name, Arguments: args}
}

type createCall struct {
	spaceID  string
	title    string
	content  string
	parentID string
}

type updateCall struct {
	pageID  string
	title   string
	content string
	version int
}

// fakePages is an in-memory PageStore recording writes.
type fakePages struct {
	page       *actions.Page
	pageErr    error
	foundID    string
	findErr    error
	createdID  string
	createErr  error
	updateErr  error
	creates    []createCall
	updates    []updateCall
}

func (f *fakePages) CreatePage(_ context.Context, spaceID, title, content, parentID string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.creates = append(f.creates, createCall{spaceID, title, content, parentID})
	return f.createdID, nil
}

func (f *fakePages) UpdatePage(_ context.Context, pageID, title, content string, version int) (string, error) {
	if f.updateErr != nil {
		return "", f.updateErr
	}
	f.updates = append(f.updates, updateCall{pageID, title, content, version})
	return pageID, nil
}

func (f *fakePages) GetPage(_ context.Context, pageID string) (*actions.Page, error) {
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	return f.page, nil
}

func (f *fakePages) FindPageByTitle(_ context.Context, spaceID, title string) (string, error) {
	if f.findErr != nil {
		return "", f.findErr
	}
	return f.foundID, nil
}

// fakeSource is a canned SourceReader.
type fakeSource struct {
	content string
	deps    []string
	history []actions.CommitInfo
	diff    *actions.DiffResult
}

func (f *fakeSource) ReadFile(_ context.Context, path, revision string) (string, error) {
	return f.content, nil
}

func (f *fakeSource) Diff(_ context.Context, commitID string) (*actions.DiffResult, error) {
	if f.diff != nil {
		return f.diff, nil
	}
	return &actions.DiffResult{Patch: "+code", ChangedFiles: []string{"a.ts"}}, nil
}

func (f *fakeSource) ListInternalDependencies(_ context.Context, path string) ([]string, error) {
	return f.deps, nil
}

func (f *fakeSource) History(_ context.Context, path string, limit int) ([]actions.CommitInfo, error) {
	return f.history, nil
}

// fakeConverter wraps markdown in a recognizable marker.
type fakeConverter struct {
	inputs []string
}

func (f *fakeConverter) ToMarkup(_ context.Context, markdown string) (string, error) {
	f.inputs = append(f.inputs, markdown)
	return "<storage>" + markdown + "</storage>", nil
}

func newTestExecutor(pages *fakePages, source *fakeSource, conv *fakeConverter) *actions.Executor {
	return actions.NewExecutor(pages, source, conv, actions.Defaults{
		SpaceID:      "DOCS",
		HistoryLimit: 5,
	})
}
