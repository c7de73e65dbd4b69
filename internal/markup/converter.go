// Package markup converts engine-authored markdown into Confluence storage
// format.
package markup

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// codeBlock matches the HTML goldmark emits for fenced code blocks. The
// optional class carries the fence's language tag.
var codeBlock = regexp.MustCompile(`(?s)<pre><code(?: class="language-([^"]*)")?>(.*?)</code></pre>`)

// Converter renders markdown to Confluence storage format. Storage format is
// XHTML plus Confluence macro elements, so conversion is markdown to HTML
// followed by a rewrite of the constructs Confluence represents as macros.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter creates a converter with GitHub-flavored markdown enabled.
func NewConverter() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				// Engine output may embed raw HTML; pass it through.
				html.WithUnsafe(),
			),
		),
	}
}

// ToMarkup converts markdown to Confluence storage format.
func (c *Converter) ToMarkup(_ context.Context, markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return rewriteCodeBlocks(buf.String()), nil
}

// rewriteCodeBlocks replaces rendered <pre><code> blocks with the Confluence
// code macro, which is what gives readers syntax highlighting and line
// numbers in the published page.
func rewriteCodeBlocks(rendered string) string {
	return codeBlock.ReplaceAllStringFunc(rendered, func(block string) string {
		parts := codeBlock.FindStringSubmatch(block)
		language, code := parts[1], parts[2]

		var macro strings.Builder
		macro.WriteString(`<ac:structured-macro ac:name="code">`)
		if language != "" {
			macro.WriteString(`<ac:parameter ac:name="language">`)
			macro.WriteString(stdhtml.EscapeString(language))
			macro.WriteString(`</ac:parameter>`)
		}
		macro.WriteString(`<ac:plain-text-body><![CDATA[`)
		macro.WriteString(cdataEscape(stdhtml.UnescapeString(code)))
		macro.WriteString(`]]></ac:plain-text-body></ac:structured-macro>`)
		return macro.String()
	})
}

// cdataEscape splits any literal "]]>" so it cannot terminate the CDATA
// section early.
func cdataEscape(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}
