package orchestrator

import (
	"regexp"
	"strconv"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
)

// DefaultPlaceholderSentinels are literal argument values treated as
// placeholders. The set is heuristic: a value like "123" could in principle
// be a legitimate identifier, which is why deployments can override it
// through configuration rather than widening or narrowing it here.
var DefaultPlaceholderSentinels = []string{
	"123",
	"0",
	"[Retrieved pageId]",
	"[pageId]",
	"[page_id]",
	"[Retrieved title]",
	"[title]",
	"[version]",
}

// bracketedToken matches engine-invented stand-ins like "[the real id]".
var bracketedToken = regexp.MustCompile(`^\[[^\[\]]+\]$`)

// IsPlaceholder reports whether a recorded argument value looks like a
// stand-in rather than a real identifier.
func IsPlaceholder(value string, sentinels []string) bool {
	if bracketedToken.MatchString(value) {
		return true
	}
	for _, s := range sentinels {
		if value == s {
			return true
		}
	}
	return false
}

// RepairArguments overwrites placeholder pageId/title/version arguments of
// an update-page request with discovered real values. It is a pure function
// over the argument map: the input is never mutated, a single pass is
// performed, and repairing an already-repaired map changes nothing. The
// returned count is the number of overwritten arguments.
func RepairArguments(args map[string]any, ent Entities, sentinels []string) (map[string]any, int) {
	repaired := make(map[string]any, len(args))
	for k, v := range args {
		repaired[k] = v
	}

	count := 0
	if ent.PageID != "" && IsPlaceholder(argumentText(args["page_id"]), sentinels) {
		repaired["page_id"] = ent.PageID
		count++
	}
	if ent.PageTitle != "" && IsPlaceholder(argumentText(args["title"]), sentinels) {
		repaired["title"] = ent.PageTitle
		count++
	}
	if ent.PageVersion > 0 && IsPlaceholder(argumentText(args["version"]), sentinels) {
		repaired["version"] = ent.PageVersion
		count++
	}

	return repaired, count
}

// RepairRecord applies RepairArguments to an update-page record. Records of
// other actions pass through unchanged.
func RepairRecord(rec Record, ent Entities, sentinels []string) Record {
	if rec.Action != actions.ActionUpdatePage {
		return rec
	}
	repaired, _ := RepairArguments(rec.Arguments, ent, sentinels)
	rec.Arguments = repaired
	return rec
}

// argumentText renders an argument value for placeholder comparison.
// Numeric stand-ins arrive as JSON numbers, so they are canonicalized to
// their integer text form.
func argumentText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
