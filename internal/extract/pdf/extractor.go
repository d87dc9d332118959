// Package pdf extracts text and document metadata from PDF files. It parses
// the subset of PDF needed for indexing: literal-string show operators (Tj,
// TJ) in page content streams, FlateDecode compression, and the Info
// dictionary for title and author. Exotic encodings fall back to whatever
// literal strings are recoverable; a file without a PDF header is rejected
// as corrupt.
package pdf

import (
	"bytes"
	"compress/zlib"
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract parses the PDF and returns its text and metadata.
func (e *Extractor) Extract(_ context.Context, doc *domain.RemoteDocument, content []byte) (*domain.Extraction, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	meta := domain.DocumentMetadata{
		Title:       doc.Name,
		MIMEType:    doc.MIMEType,
		Path:        doc.Path,
		WebViewLink: doc.WebViewLink,
	}

	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return nil, &domain.ExtractionError{Reason: domain.FailureCorrupt, Metadata: meta}
	}

	if title := infoString(content, "Title"); title != "" {
		meta.Title = title
	}
	meta.Author = infoString(content, "Author")
	meta.PageCount = countPages(content)

	var text []string
	for _, stream := range contentStreams(content) {
		if t := showText(stream); t != "" {
			text = append(text, t)
		}
	}

	return &domain.Extraction{
		Text:     strings.Join(text, "\n"),
		Metadata: meta,
	}, nil
}

var (
	pageType   = regexp.MustCompile(`/Type\s*/Page[^s]`)
	streamMark = []byte("stream")
	endstream  = []byte("endstream")
)

// countPages counts page objects. Pages tree nodes (/Type /Pages) do not
// match.
func countPages(content []byte) int {
	return len(pageType.FindAll(content, -1))
}

// infoString returns the literal string value for a key such as /Title or
// /Author, searching the whole file since the Info dictionary is not indexed.
func infoString(content []byte, key string) string {
	marker := []byte("/" + key)
	pos := 0
	for {
		i := bytes.Index(content[pos:], marker)
		if i < 0 {
			return ""
		}
		pos += i + len(marker)
		rest := content[pos:]
		j := 0
		for j < len(rest) && (rest[j] == ' ' || rest[j] == '\r' || rest[j] == '\n') {
			j++
		}
		if j < len(rest) && rest[j] == '(' {
			s, _ := literalString(rest[j:])
			return strings.TrimSpace(s)
		}
	}
}

// contentStreams returns every stream body, inflated when FlateDecode
// compressed.
func contentStreams(content []byte) [][]byte {
	var out [][]byte
	pos := 0
	for {
		i := bytes.Index(content[pos:], streamMark)
		if i < 0 {
			return out
		}
		start := pos + i + len(streamMark)
		// Stream data begins after the EOL following the keyword.
		if start < len(content) && content[start] == '\r' {
			start++
		}
		if start < len(content) && content[start] == '\n' {
			start++
		}
		j := bytes.Index(content[start:], endstream)
		if j < 0 {
			return out
		}
		body := content[start : start+j]
		if inflated, err := inflate(body); err == nil {
			out = append(out, inflated)
		} else {
			out = append(out, body)
		}
		pos = start + j + len(endstream)
	}
}

// inflate decompresses a FlateDecode stream body.
func inflate(body []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(bytes.TrimRight(body, "\r\n")))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// showText collects the arguments of Tj and TJ operators from a content
// stream, joining strings shown on one line with no separator and operator
// groups with spaces.
func showText(stream []byte) string {
	var parts []string
	pos := 0
	for pos < len(stream) {
		switch stream[pos] {
		case '(':
			s, n := literalString(stream[pos:])
			if op := nextOperator(stream[pos+n:]); op == "Tj" || op == "'" || op == "\"" {
				parts = append(parts, s)
			}
			pos += n
		case '[':
			s, n := arrayStrings(stream[pos:])
			if op := nextOperator(stream[pos+n:]); op == "TJ" && s != "" {
				parts = append(parts, s)
			}
			pos += n
		default:
			pos++
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// nextOperator returns the first token after optional whitespace.
func nextOperator(rest []byte) string {
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\r' || rest[i] == '\n' || rest[i] == '\t') {
		i++
	}
	start := i
	for i < len(rest) && i-start < 2 {
		c := rest[i]
		if c == ' ' || c == '\r' || c == '\n' || c == '\t' || c == '(' || c == '[' || c == '/' {
			break
		}
		i++
	}
	return string(rest[start:i])
}

// literalString decodes a PDF literal string starting at an opening
// parenthesis. Returns the decoded text and the number of input bytes
// consumed including both parentheses.
func literalString(in []byte) (string, int) {
	var b strings.Builder
	depth := 0
	i := 0
	for i < len(in) {
		c := in[i]
		switch c {
		case '\\':
			if i+1 >= len(in) {
				return b.String(), i + 1
			}
			i++
			switch in[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
				// Ignored.
			case '(', ')', '\\':
				b.WriteByte(in[i])
			default:
				// Octal escapes and unknown escapes pass through
				// undecoded; fine for indexing purposes.
				b.WriteByte(in[i])
			}
		case '(':
			depth++
			if depth > 1 {
				b.WriteByte(c)
			}
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
		i++
	}
	return b.String(), i
}

// arrayStrings decodes the literal strings inside a TJ array, starting at an
// opening bracket. Numeric kerning adjustments are skipped.
func arrayStrings(in []byte) (string, int) {
	var b strings.Builder
	i := 1
	for i < len(in) {
		switch in[i] {
		case '(':
			s, n := literalString(in[i:])
			b.WriteString(s)
			i += n
		case ']':
			return b.String(), i + 1
		default:
			i++
		}
	}
	return b.String(), i
}
