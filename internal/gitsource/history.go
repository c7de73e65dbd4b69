package gitsource

import (
	"regexp"
	"strings"
)

// nonLogicMessage matches commit messages that advertise documentation-only
// or cosmetic work.
var nonLogicMessage = regexp.MustCompile(`(?i)^\s*(docs?\b|doc:|documentation\b|typo\b|comments?\b|readme\b|chore\(docs\))`)

// commentPrefixes are line starts that mark a changed line as commentary
// rather than behavior.
var commentPrefixes = []string{"//", "#", "*", "/*", "*/", "--", "<!--"}

// isLogicChange classifies a commit as touching business logic. A commit
// whose message says it is documentation work, or whose patch only adds or
// removes blank and comment lines, is not a logic change. The check is a
// heuristic over patch text, not a parse of the language.
func isLogicChange(message, patch string) bool {
	if nonLogicMessage.MatchString(message) {
		return false
	}

	changed := false
	for _, line := range strings.Split(patch, "\n") {
		if len(line) < 1 {
			continue
		}
		marker := line[0]
		if marker != '+' && marker != '-' {
			continue
		}
		// File headers look like changed lines but are not.
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			continue
		}

		body := strings.TrimSpace(line[1:])
		if body == "" || isCommentLine(body) {
			continue
		}
		changed = true
		break
	}
	return changed
}

func isCommentLine(line string) bool {
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
