// Package gitsource implements the source-control reader boundary over a
// local git clone using go-git.
package gitsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
)

var (
	// ErrCommitNotFound indicates the revision does not resolve in the repo.
	ErrCommitNotFound = errors.New("commit not found")

	// ErrFileNotFound indicates the path does not exist at the revision.
	ErrFileNotFound = errors.New("file not found")
)

// Reader reads file content, diffs, and history from a local repository.
// go-git repositories support concurrent readers, so one Reader serves all
// pipeline runs.
type Reader struct {
	repo *git.Repository
}

// NewReader opens the repository at path.
func NewReader(path string) (*Reader, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", path, err)
	}
	return &Reader{repo: repo}, nil
}

// ReadFile returns the content of path at the given revision. An empty
// revision reads at HEAD.
func (r *Reader) ReadFile(_ context.Context, path, revision string) (string, error) {
	if revision == "" {
		revision = "HEAD"
	}

	commit, err := r.resolveCommit(revision)
	if err != nil {
		return "", err
	}

	file, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", fmt.Errorf("%s at %s: %w", path, revision, ErrFileNotFound)
		}
		return "", fmt.Errorf("reading %s at %s: %w", path, revision, err)
	}

	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("reading %s at %s: %w", path, revision, err)
	}
	return content, nil
}

// Diff returns the patch of a commit against its first parent, plus the
// list of changed file paths. A root commit diffs against the empty tree.
func (r *Reader) Diff(ctx context.Context, commitID string) (*actions.DiffResult, error) {
	commit, err := r.resolveCommit(commitID)
	if err != nil {
		return nil, err
	}

	patch, err := commitPatch(ctx, commit)
	if err != nil {
		return nil, fmt.Errorf("diffing commit %s: %w", commitID, err)
	}

	result := &actions.DiffResult{Patch: patch.String()}
	seen := make(map[string]bool)
	for _, fp := range patch.FilePatches() {
		from, to := fp.Files()
		for _, f := range []interface{ Path() string }{to, from} {
			if f == nil {
				continue
			}
			if p := f.Path(); !seen[p] {
				seen[p] = true
				result.ChangedFiles = append(result.ChangedFiles, p)
			}
		}
	}
	return result, nil
}

// ListInternalDependencies returns repository-internal files imported by
// path, resolved from its import statements at HEAD.
func (r *Reader) ListInternalDependencies(ctx context.Context, path string) ([]string, error) {
	content, err := r.ReadFile(ctx, path, "")
	if err != nil {
		return nil, err
	}
	return parseInternalDependencies(content, path), nil
}

// History returns up to limit commits touching path, newest first, each
// classified as a logic change or not.
func (r *Reader) History(ctx context.Context, path string, limit int) ([]actions.CommitInfo, error) {
	iter, err := r.repo.Log(&git.LogOptions{
		FileName: &path,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("listing history of %s: %w", path, err)
	}
	defer iter.Close()

	var history []actions.CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		info := actions.CommitInfo{
			ID:      c.Hash.String(),
			Message: c.Message,
			Date:    c.Committer.When,
		}

		if patch, perr := commitPatch(ctx, c); perr == nil {
			info.IsLogicChange = isLogicChange(c.Message, patch.String())
		} else {
			// Unreadable patch: assume it mattered.
			info.IsLogicChange = true
		}

		history = append(history, info)
		if len(history) >= limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", path, err)
	}
	return history, nil
}

func (r *Reader) resolveCommit(revision string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("revision %q: %w", revision, ErrCommitNotFound)
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("revision %q: %w", revision, ErrCommitNotFound)
	}
	return commit, nil
}

// commitPatch diffs a commit against its first parent, or against the empty
// tree for a root commit.
func commitPatch(ctx context.Context, commit *object.Commit) (*object.Patch, error) {
	if commit.NumParents() == 0 {
		tree, err := commit.Tree()
		if err != nil {
			return nil, err
		}
		changes, err := object.DiffTreeContext(ctx, nil, tree)
		if err != nil {
			return nil, err
		}
		return changes.PatchContext(ctx)
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, err
	}
	return parent.PatchContext(ctx, commit)
}
