package gitsource

import (
	"path"
	"regexp"
)

// importPatterns match relative module specifiers in the source languages
// the documentation pipeline is pointed at. Only repository-internal
// imports matter here, so bare package names are deliberately not matched.
var importPatterns = []*regexp.Regexp{
	// import ... from './x', export ... from './x'
	regexp.MustCompile(`(?m)^\s*(?:import|export)\b[^'"\n]*from\s+['"](\.{1,2}/[^'"]+)['"]`),
	// side-effect import: import './x'
	regexp.MustCompile(`(?m)^\s*import\s+['"](\.{1,2}/[^'"]+)['"]`),
	// require('./x')
	regexp.MustCompile(`require\(\s*['"](\.{1,2}/[^'"]+)['"]\s*\)`),
}

// parseInternalDependencies extracts repository-internal import targets from
// a file's content, resolved relative to the importing file's directory.
// Paths are returned in first-seen order without duplicates.
func parseInternalDependencies(content, fromPath string) []string {
	dir := path.Dir(fromPath)
	seen := make(map[string]bool)
	var deps []string

	for _, pattern := range importPatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			resolved := path.Clean(path.Join(dir, match[1]))
			if !seen[resolved] {
				seen[resolved] = true
				deps = append(deps, resolved)
			}
		}
	}
	return deps
}
