// Package extraction converts uploaded document bytes into plain text for
// downstream analysis. Supported formats are PDF, DOCX, plain text, and
// markdown, selected by content type.
package extraction

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	MediaTypePDF      = "application/pdf"
	MediaTypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeText     = "text/plain"
	MediaTypeMarkdown = "text/markdown"
)

// Supported reports whether the given content type can be extracted.
func Supported(contentType string) bool {
	switch normalize(contentType) {
	case MediaTypePDF, MediaTypeDOCX, MediaTypeText, MediaTypeMarkdown:
		return true
	}
	return false
}

// Extract returns the plain text content of data interpreted per contentType.
// It returns ErrUnsupportedFormat for unknown content types and
// ErrCorruptDocument when the bytes do not parse as the declared format.
func Extract(data []byte, contentType string) (string, error) {
	switch normalize(contentType) {
	case MediaTypePDF:
		return extractPDF(data)
	case MediaTypeDOCX:
		return extractDOCX(data)
	case MediaTypeText, MediaTypeMarkdown:
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
}

// PageCount returns the number of pages in a PDF document.
func PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return count, nil
}

func extractPDF(data []byte) (string, error) {
	if err := api.Validate(bytes.NewReader(data), nil); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	var sb strings.Builder
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func normalize(contentType string) string {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return media
}
