package detect

import (
	"fmt"
	"strings"

	"github.com/aescanero/dago-node-analyzer/internal/model"
)

// Entry maps one keyword to its category.
type Entry struct {
	Keyword     string
	Category    string
	Description string
}

// Lexicon is a static, validated keyword table for one domain.
type Lexicon struct {
	entries []Entry
}

// NewLexicon validates and builds a lexicon. Keywords are stored lowercase.
func NewLexicon(entries ...Entry) (*Lexicon, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("lexicon must contain at least one entry")
	}

	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		kw := strings.ToLower(strings.TrimSpace(e.Keyword))
		if kw == "" {
			return nil, fmt.Errorf("entry %d: keyword is required", i)
		}
		if e.Category == "" {
			return nil, fmt.Errorf("entry %d (%s): category is required", i, kw)
		}
		if seen[kw] {
			return nil, fmt.Errorf("entry %d: duplicate keyword %q", i, kw)
		}
		seen[kw] = true

		e.Keyword = kw
		out = append(out, e)
	}

	return &Lexicon{entries: out}, nil
}

// MustLexicon is NewLexicon for package-level tables; it panics on an invalid table.
func MustLexicon(entries ...Entry) *Lexicon {
	lex, err := NewLexicon(entries...)
	if err != nil {
		panic(fmt.Sprintf("invalid lexicon: %v", err))
	}
	return lex
}

// Len returns the number of entries.
func (l *Lexicon) Len() int { return len(l.entries) }

// Entries returns a copy of the lexicon table.
func (l *Lexicon) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Detect reports every lexicon keyword contained in text, in lexicon order.
// Matching is case-insensitive substring containment; overlapping keywords
// all match.
func Detect(text string, lex *Lexicon) []model.DetectionMatch {
	matches := []model.DetectionMatch{}
	if lex == nil || text == "" {
		return matches
	}

	folded := strings.ToLower(text)
	for _, e := range lex.entries {
		if strings.Contains(folded, e.Keyword) {
			matches = append(matches, model.DetectionMatch{
				Keyword:     e.Keyword,
				Category:    e.Category,
				Description: e.Description,
			})
		}
	}
	return matches
}

// MatchedTerms returns the distinct terms contained in text, in the order given.
func MatchedTerms(text string, terms []string) []string {
	folded := strings.ToLower(text)
	seen := make(map[string]bool, len(terms))

	var out []string
	for _, term := range terms {
		t := strings.ToLower(term)
		if t == "" || seen[t] {
			continue
		}
		if strings.Contains(folded, t) {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// ContainsAny reports whether text contains at least one of terms.
func ContainsAny(text string, terms []string) bool {
	folded := strings.ToLower(text)
	for _, term := range terms {
		if term != "" && strings.Contains(folded, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Categories returns the distinct categories of matches, in first-seen order.
func Categories(matches []model.DetectionMatch) []string {
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m.Category] {
			seen[m.Category] = true
			out = append(out, m.Category)
		}
	}
	return out
}
