// Package document provides document type detection and text extraction
// for the agent's filesystem tools.
package document

import (
	"path/filepath"
	"strings"
)

// Type is a coarse document type label derived from a file extension.
type Type string

const (
	TypeText     Type = "text"
	TypeMarkdown Type = "markdown"
	TypeJSON     Type = "json"
	TypeCSV      Type = "csv"
	TypeHTML     Type = "html"
	TypePDF      Type = "pdf"
	TypeUnknown  Type = "unknown"
)

// DetectType maps a path's extension to a document type label.
func DetectType(path string) Type {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return TypeText
	case ".md":
		return TypeMarkdown
	case ".json":
		return TypeJSON
	case ".csv":
		return TypeCSV
	case ".html", ".htm":
		return TypeHTML
	case ".pdf":
		return TypePDF
	default:
		return TypeUnknown
	}
}
