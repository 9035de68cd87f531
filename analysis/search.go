package analysis

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// DefaultContextLength is the context window applied when the caller does
// not supply one. Callers are advised to stay within 20-400 characters but
// smaller windows are honored as given.
const DefaultContextLength = 50

// Match is a single search hit with its surrounding text window.
type Match struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// Search scans content for case-insensitive literal occurrences of query and
// returns each hit with a window of contextLength bytes on either side of the
// match center, clamped to the content bounds. Position is the byte offset of
// the match itself. Window edges that would split a multibyte rune widen
// outward to the nearest rune boundary, so Text is always valid UTF-8.
func Search(content, query string, contextLength int) ([]Match, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if contextLength <= 0 {
		contextLength = DefaultContextLength
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, fmt.Errorf("failed to build search pattern: %w", err)
	}

	var matches []Match
	for _, loc := range re.FindAllStringIndex(content, -1) {
		pos, end := loc[0], loc[1]
		mid := pos + (end-pos)/2

		start := mid - contextLength
		if start < 0 {
			start = 0
		}
		stop := mid + contextLength + 1
		if stop > len(content) {
			stop = len(content)
		}
		for start > 0 && !utf8.RuneStart(content[start]) {
			start--
		}
		for stop < len(content) && !utf8.RuneStart(content[stop]) {
			stop++
		}

		matches = append(matches, Match{
			Text:     content[start:stop],
			Position: pos,
		})
	}

	return matches, nil
}
