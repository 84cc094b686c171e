// Package local extracts plain text from uploaded PDF, DOCX and text files
// in-process.
package local

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/pkg/textx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// Extractor implements domain.TextExtractor without external services.
type Extractor struct{}

// New returns an Extractor.
func New() Extractor { return Extractor{} }

// Extract returns the text of data. The type comes from the file extension,
// or from content sniffing when the extension is unknown. Unsupported or
// unreadable documents wrap domain.ErrInvalidArgument.
func (Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	_, span := otel.Tracer("textextractor.local").Start(ctx, "Extract")
	defer span.End()

	ct := DetectContentType(filename, data)
	span.SetAttributes(attribute.String("file.content_type", ct), attribute.Int("file.size", len(data)))

	var (
		text string
		err  error
	)
	switch ct {
	case mimeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text file is not valid UTF-8", domain.ErrInvalidArgument)
		}
		text = string(data)
	case mimePDF:
		text, err = extractPDF(data)
	case mimeDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidArgument, ct)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return textx.SanitizeText(text), nil
}

// DetectContentType resolves the document type of an upload.
func DetectContentType(filename string, data []byte) string {
	if ct := contentTypeFromExt(filepath.Ext(filename)); ct != "" {
		return ct
	}
	m := mimetype.Detect(data)
	switch {
	case m.Is(mimePDF):
		return mimePDF
	case m.Is(mimeDOCX):
		return mimeDOCX
	case m.Is(mimeText):
		return mimeText
	}
	return m.String()
}

func contentTypeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	case ".txt", ".text":
		return mimeText
	}
	return ""
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()
	return stripXML(doc.Editable().GetContent()), nil
}

// stripXML drops the WordprocessingML tags GetContent returns, keeping
// paragraph breaks.
func stripXML(s string) string {
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
