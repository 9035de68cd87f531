package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFInfo carries metadata available only for PDF extractions.
type PDFInfo struct {
	Pages int `json:"pages"`
}

// Extraction is the result of extracting plain text from a document.
type Extraction struct {
	Text         string   `json:"text"`
	WordCount    int      `json:"wordCount"`
	DocumentType Type     `json:"documentType"`
	PDFInfo      *PDFInfo `json:"pdfInfo,omitempty"`
}

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script.*?</script>`)
	htmlTagRe     = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// ExtractText extracts plain text from the file at path according to its
// detected type. PDF files are binary-parsed; JSON is re-serialized with
// 2-space indentation when parseable; CSV gets a line count header; HTML has
// scripts and tags stripped. Everything else is returned raw.
func ExtractText(path string) (Extraction, error) {
	docType := DetectType(path)

	if docType == TypePDF {
		return extractPDF(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to read file: %w", err)
	}

	var text string
	switch docType {
	case TypeJSON:
		text = reindentJSON(raw)
	case TypeCSV:
		text = fmt.Sprintf("CSV document with %d lines\n\n%s", countLines(string(raw)), raw)
	case TypeHTML:
		text = StripHTML(string(raw))
	default:
		text = string(raw)
	}

	return Extraction{
		Text:         text,
		WordCount:    len(strings.Fields(text)),
		DocumentType: docType,
	}, nil
}

func extractPDF(path string) (ext Extraction, err error) {
	// The pdf library panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			ext = Extraction{}
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to parse PDF: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to parse PDF: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return Extraction{}, fmt.Errorf("failed to parse PDF: %w", err)
	}

	text := buf.String()
	return Extraction{
		Text:         text,
		WordCount:    len(strings.Fields(text)),
		DocumentType: TypePDF,
		PDFInfo:      &PDFInfo{Pages: reader.NumPage()},
	}, nil
}

// reindentJSON re-serializes valid JSON with 2-space indentation. Invalid
// JSON is returned as-is.
func reindentJSON(raw []byte) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(pretty)
}

// StripHTML removes script blocks, then all tags, then collapses whitespace.
func StripHTML(html string) string {
	text := scriptBlockRe.ReplaceAllString(html, "")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return len(strings.Split(strings.TrimSuffix(s, "\n"), "\n"))
}
