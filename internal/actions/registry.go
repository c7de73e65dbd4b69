// Package actions defines the fixed catalogue of tool actions the reasoning
// engine may request, and the executor that binds each action name to its
// external collaborator. The catalogue is static; argument schemas are plain
// JSON Schema maps handed to the engine verbatim.
package actions

// Name identifies an action in the catalogue.
type Name string

const (
	ActionReadFile                 Name = "read-file"
	ActionDiffCommit               Name = "diff-commit"
	ActionListChangedFiles         Name = "list-changed-files"
	ActionListInternalDependencies Name = "list-internal-dependencies"
	ActionGetHistory               Name = "get-history"
	ActionGetPage                  Name = "get-page"
	ActionFindPageByTitle          Name = "find-page-by-title"
	ActionCreatePage               Name = "create-page"
	ActionUpdatePage               Name = "update-page"
	ActionConvertToMarkup          Name = "convert-to-markup"
)

// Spec describes one action to the reasoning engine.
type Spec struct {
	Name        Name           `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func objectSchema(required []string, props map[string]any) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func intProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

// Registry returns the full action catalogue in a stable order.
func Registry() []Spec {
	return []Spec{
		{
			Name:        ActionReadFile,
			Description: "Read the content of a source file, optionally at a specific revision.",
			Parameters: objectSchema([]string{"path"}, map[string]any{
				"path":     stringProp("Repository-relative file path."),
				"revision": stringProp("Commit id to read at. Defaults to HEAD."),
			}),
		},
		{
			Name:        ActionDiffCommit,
			Description: "Get the patch text of a commit against its first parent.",
			Parameters: objectSchema([]string{"commit_id"}, map[string]any{
				"commit_id": stringProp("Full or abbreviated commit hash."),
			}),
		},
		{
			Name:        ActionListChangedFiles,
			Description: "List the file paths touched by a commit.",
			Parameters: objectSchema([]string{"commit_id"}, map[string]any{
				"commit_id": stringProp("Full or abbreviated commit hash."),
			}),
		},
		{
			Name:        ActionListInternalDependencies,
			Description: "List repository-internal files imported by a source file.",
			Parameters: objectSchema([]string{"path"}, map[string]any{
				"path": stringProp("Repository-relative file path."),
			}),
		},
		{
			Name:        ActionGetHistory,
			Description: "Get recent commits touching a file, flagged as logic changes or not.",
			Parameters: objectSchema([]string{"path"}, map[string]any{
				"path":  stringProp("Repository-relative file path."),
				"limit": intProp("Maximum number of commits to return."),
			}),
		},
		{
			Name:        ActionGetPage,
			Description: "Fetch a Confluence page by id, including its current version number.",
			Parameters: objectSchema([]string{"page_id"}, map[string]any{
				"page_id": stringProp("Confluence page id."),
			}),
		},
		{
			Name:        ActionFindPageByTitle,
			Description: "Find the id of a Confluence page by its exact title.",
			Parameters: objectSchema([]string{"title"}, map[string]any{
				"space_id": stringProp("Confluence space key. Defaults to the task's space."),
				"title":    stringProp("Exact page title."),
			}),
		},
		{
			Name:        ActionCreatePage,
			Description: "Create a new Confluence page with the given markup content.",
			Parameters: objectSchema([]string{"title", "content"}, map[string]any{
				"space_id":  stringProp("Confluence space key. Defaults to the task's space."),
				"title":     stringProp("Page title."),
				"content":   stringProp("Page body in Confluence storage format."),
				"parent_id": stringProp("Optional parent page id."),
			}),
		},
		{
			Name:        ActionUpdatePage,
			Description: "Update an existing Confluence page. Requires the page's current version number.",
			Parameters: objectSchema([]string{"page_id", "title", "content", "version"}, map[string]any{
				"page_id": stringProp("Confluence page id."),
				"title":   stringProp("Page title."),
				"content": stringProp("Page body in Confluence storage format."),
				"version": intProp("Current version number of the page, from get-page."),
			}),
		},
		{
			Name:        ActionConvertToMarkup,
			Description: "Convert markdown text to Confluence storage format markup.",
			Parameters: objectSchema([]string{"markdown"}, map[string]any{
				"markdown": stringProp("Markdown source text."),
			}),
		},
	}
}

// Lookup returns the spec for a name, or false if the action is not in the
// catalogue.
func Lookup(name Name) (Spec, bool) {
	for _, spec := range Registry() {
		if spec.Name == name {
			return spec, true
		}
	}
	return Spec{}, false
}
