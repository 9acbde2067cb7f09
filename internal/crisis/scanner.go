// Package crisis flags free text that contains crisis-related phrases.
//
// Matching is a case-insensitive substring test with no word boundaries,
// stemming or negation handling, so "hopelessly" matches "hopeless" and
// "I am not suicidal" matches nothing while "suicide prevention" does.
package crisis

import "strings"

// DefaultKeywords is the built-in phrase list.
var DefaultKeywords = []string{"suicide", "self-harm", "hopeless", "kill myself"}

// Scanner holds a normalized keyword list. It is immutable and safe for
// concurrent use.
type Scanner struct {
	keywords []string
}

// NewScanner lower-cases and trims keywords, dropping blanks. An empty list
// falls back to DefaultKeywords.
func NewScanner(keywords []string) *Scanner {
	var norm []string
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			norm = append(norm, k)
		}
	}
	if len(norm) == 0 {
		norm = append(norm, DefaultKeywords...)
	}
	return &Scanner{keywords: norm}
}

// Detect reports whether text contains any keyword.
func (s *Scanner) Detect(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range s.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Matches returns the keywords found in text, in keyword order.
func (s *Scanner) Matches(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, k := range s.keywords {
		if strings.Contains(lower, k) {
			out = append(out, k)
		}
	}
	return out
}

// Keywords returns a copy of the active keyword list.
func (s *Scanner) Keywords() []string {
	return append([]string(nil), s.keywords...)
}
