// Package analysis provides plain-text document analysis.
//
// All functions are pure string operations: sentence splitting, frequency
// counting and regex-based entity extraction. The heuristics are deliberately
// approximate; they are not an NLP pipeline.
package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Mode selects which parts of an analysis to compute.
type Mode string

const (
	ModeFull         Mode = "full"
	ModeSummaryOnly  Mode = "summary_only"
	ModeEntitiesOnly Mode = "entities_only"
	ModeTopicsOnly   Mode = "topics_only"
)

// ParseMode parses a mode string, defaulting to full when empty.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeSummaryOnly, ModeEntitiesOnly, ModeTopicsOnly:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown analysis mode: %q", s)
	}
}

// Result holds the outcome of analyzing a document.
type Result struct {
	Summary   string   `json:"summary,omitempty"`
	Entities  []string `json:"entities,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	WordCount int      `json:"wordCount"`
}

const (
	// minFragmentLen is the minimum trimmed length for a sentence fragment
	// to be kept after splitting.
	minFragmentLen = 10

	// maxCapitalizedEntities caps the capitalized-word matches only; emails,
	// phone numbers and URLs are not subject to the cap.
	maxCapitalizedEntities = 20

	// maxTopics is the number of ranked topics returned.
	maxTopics = 10

	// minTopicLen excludes short tokens from topic ranking.
	minTopicLen = 4
)

var (
	capitalizedRe = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
	emailRe       = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe       = regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	urlRe         = regexp.MustCompile(`https?://[^\s]+`)

	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]`)
)

// stopwords excluded from topic ranking.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "have": {}, "has": {}, "had": {}, "will": {},
	"would": {}, "this": {}, "that": {},
}

// Analyze runs the requested analysis over content.
func Analyze(content string, mode Mode) Result {
	result := Result{WordCount: len(strings.Fields(content))}

	if mode == ModeFull || mode == ModeSummaryOnly {
		result.Summary = Summarize(content)
	}
	if mode == ModeFull || mode == ModeEntitiesOnly {
		result.Entities = ExtractEntities(content)
	}
	if mode == ModeFull || mode == ModeTopicsOnly {
		result.Topics = RankTopics(content)
	}

	return result
}

// SplitSentences splits content on sentence terminators, keeping trimmed
// fragments longer than minFragmentLen characters.
func SplitSentences(content string) []string {
	var fragments []string
	for _, raw := range strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		frag := strings.TrimSpace(raw)
		if len(frag) > minFragmentLen {
			fragments = append(fragments, frag)
		}
	}
	return fragments
}

// Summarize produces a three-fragment summary: first, middle and last
// sentence fragments joined with ". " and a trailing period. Duplicate
// indexes collapse, so short documents yield fewer fragments.
func Summarize(content string) string {
	fragments := SplitSentences(content)
	if len(fragments) == 0 {
		return ""
	}

	indexes := []int{0, len(fragments) / 2, len(fragments) - 1}
	var picked []string
	seen := map[int]struct{}{}
	for _, i := range indexes {
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		picked = append(picked, fragments[i])
	}

	return strings.Join(picked, ". ") + "."
}

// ExtractEntities collects capitalized words (capped at
// maxCapitalizedEntities), email addresses, phone-like digit sequences and
// URLs. The combined list is deduplicated preserving first-seen order.
func ExtractEntities(content string) []string {
	var entities []string
	seen := map[string]struct{}{}

	add := func(matches []string, limit int) {
		for _, m := range matches {
			if limit > 0 && len(entities) >= limit {
				return
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			entities = append(entities, m)
		}
	}

	add(capitalizedRe.FindAllString(content, -1), maxCapitalizedEntities)
	add(emailRe.FindAllString(content, -1), 0)
	add(phoneRe.FindAllString(content, -1), 0)
	add(urlRe.FindAllString(content, -1), 0)

	return entities
}

// RankTopics ranks non-stopword tokens longer than three characters by
// descending frequency. Ties keep first-encountered order. Returns at most
// maxTopics entries.
func RankTopics(content string) []string {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	var order int

	for _, field := range strings.Fields(strings.ToLower(content)) {
		word := nonAlnumRe.ReplaceAllString(field, "")
		if len(word) < minTopicLen {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		if _, ok := counts[word]; !ok {
			firstSeen[word] = order
			order++
		}
		counts[word]++
	}

	topics := make([]string, 0, len(counts))
	for word := range counts {
		topics = append(topics, word)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return firstSeen[topics[i]] < firstSeen[topics[j]]
	})

	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}
