// Package html extracts readable text from HTML documents by stripping
// markup. Script, style and head content is discarded; block elements become
// line breaks so the extracted text keeps its visual structure.
package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Above the plaintext fallback
}

// Extract strips markup and returns the readable text. The title comes from
// the <title> tag when present, otherwise the file name.
func (e *Extractor) Extract(_ context.Context, doc *domain.RemoteDocument, content []byte) (*domain.Extraction, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	raw := string(content)

	title := extractTitle(raw)
	if title == "" {
		title = doc.Name
	}

	return &domain.Extraction{
		Text: stripHTML(raw),
		Metadata: domain.DocumentMetadata{
			Title:       title,
			MIMEType:    doc.MIMEType,
			Path:        doc.Path,
			WebViewLink: doc.WebViewLink,
		},
	}, nil
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag        = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClose    = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	blockOpen     = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags        = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// extractTitle returns the contents of the <title> tag, if any.
func extractTitle(content string) string {
	matches := titleTag.FindStringSubmatch(content)
	if len(matches) > 1 {
		return strings.TrimSpace(html.UnescapeString(matches[1]))
	}
	return ""
}

// stripHTML removes markup and returns readable text.
func stripHTML(content string) string {
	// Drop invisible content entirely.
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become line breaks.
	content = blockOpen.ReplaceAllString(content, "\n")
	content = blockClose.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	var result []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
