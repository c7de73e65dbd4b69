package orchestrator

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
	"github.com/fyrsmithlabs/docsmith/internal/task"
)

// systemDirective is the standing instruction for every session of a run.
func systemDirective(t task.DocumentationTask) string {
	var sb strings.Builder

	sb.WriteString("You are a technical documentation assistant. ")
	sb.WriteString("You maintain Confluence documentation for a source repository ")
	sb.WriteString("by calling the tools you are given: reading files, diffing commits, ")
	sb.WriteString("fetching and writing pages, and converting markdown to Confluence markup.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Base every statement on data you retrieved through tools in this conversation.\n")
	sb.WriteString("- Use real identifiers returned by tools. Never invent page ids, titles, or version numbers.\n")
	sb.WriteString(fmt.Sprintf("- The Confluence space for this task is %q.\n", t.SpaceID))

	return sb.String()
}

// retrievalDirective opens the retrieval session.
func retrievalDirective(t task.DocumentationTask) string {
	var sb strings.Builder

	switch t.Kind {
	case task.KindGenerate:
		sb.WriteString(fmt.Sprintf("Gather everything needed to document the file %q.\n\n", t.FilePath))
		sb.WriteString("Instructions:\n")
		sb.WriteString(fmt.Sprintf("1. Call read-file to get the content of %q\n", t.FilePath))
		sb.WriteString("2. Call list-internal-dependencies to learn what it builds on\n")
		sb.WriteString("3. Call get-history to understand how it has evolved\n")
		sb.WriteString("4. Summarize what the file does and how it fits the codebase\n")
	case task.KindUpdate:
		sb.WriteString(fmt.Sprintf("Gather everything needed to update documentation for commit %s.\n\n", t.CommitID))
		sb.WriteString("Instructions:\n")
		if t.PageID != "" {
			sb.WriteString(fmt.Sprintf("1. Call get-page with page_id %q to fetch the current documentation\n", t.PageID))
			sb.WriteString(fmt.Sprintf("2. Call diff-commit with commit_id %q to see what changed\n", t.CommitID))
		} else {
			sb.WriteString(fmt.Sprintf("1. Call diff-commit with commit_id %q to see what changed\n", t.CommitID))
			sb.WriteString("2. Call list-changed-files, then find-page-by-title to locate the page documenting the changed code\n")
			sb.WriteString("3. Call get-page on the page you found to fetch its content and version\n")
		}
		sb.WriteString("4. Summarize which documented behavior the change affects\n")
	}

	return sb.String()
}

// analysisDirective opens the analysis session, seeded with the retrieval
// phase's free text.
func analysisDirective(t task.DocumentationTask, priorText string) string {
	var sb strings.Builder

	if priorText != "" {
		sb.WriteString("Findings from the retrieval phase:\n\n")
		sb.WriteString(priorText)
		sb.WriteString("\n\n")
	}

	switch t.Kind {
	case task.KindGenerate:
		sb.WriteString("Write complete documentation for the file as markdown: ")
		sb.WriteString("purpose, public interface, dependencies, and noteworthy history. ")
	case task.KindUpdate:
		sb.WriteString("Revise the existing documentation as markdown so it matches the code ")
		sb.WriteString("after the commit. Keep unaffected sections intact. ")
	}
	sb.WriteString("Respond with the full markdown document and nothing else.")

	return sb.String()
}

// publishDirective opens the publish session. It names each required action
// explicitly and, when real identifiers were discovered earlier in the run,
// pins them so the engine does not substitute placeholders.
func publishDirective(t task.DocumentationTask, required []actions.Name, draft string, ent Entities) string {
	var sb strings.Builder

	sb.WriteString("Publish the documentation below to Confluence.\n\n")

	sb.WriteString("You must perform each of these actions:\n")
	for i, name := range required {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, name))
	}
	sb.WriteString("\n")

	if ent.PageID != "" {
		sb.WriteString("Use exactly these values, retrieved earlier in this conversation:\n")
		sb.WriteString(fmt.Sprintf("- page_id: %s\n", ent.PageID))
		if ent.PageTitle != "" {
			sb.WriteString(fmt.Sprintf("- title: %s\n", ent.PageTitle))
		}
		if ent.PageVersion > 0 {
			sb.WriteString(fmt.Sprintf("- version: %d\n", ent.PageVersion))
		}
		sb.WriteString("\n")
	}

	if t.Kind == task.KindGenerate && t.ParentPageID != "" {
		sb.WriteString(fmt.Sprintf("Create the page under parent_id %s.\n\n", t.ParentPageID))
	}

	sb.WriteString("Documentation to publish:\n\n")
	sb.WriteString(draft)

	return sb.String()
}

// recoveryDirective opens a recovery session after a failed gate, naming
// every missing action.
func recoveryDirective(priorText string, missing []actions.Name) string {
	var sb strings.Builder

	if priorText != "" {
		sb.WriteString("Progress so far:\n\n")
		sb.WriteString(priorText)
		sb.WriteString("\n\n")
	}

	sb.WriteString("The following required actions were never executed:\n")
	for _, name := range missing {
		sb.WriteString(fmt.Sprintf("- %s\n", name))
	}
	sb.WriteString("\nExecute each of them now, then report the results.")

	return sb.String()
}
