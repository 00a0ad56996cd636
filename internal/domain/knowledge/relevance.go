package knowledge

import (
	"strings"

	"github.com/fieldproof/tradecheck/internal/domain/compliance"
)

// Keywords shorter than this carry too little signal to match on.
const minKeywordLen = 5

// ContextKeywords builds the lowercase keyword set for relevance matching:
// the work type label, each violation's code section, and the violation
// description words longer than 4 characters. Order-preserving, deduplicated.
func ContextKeywords(workType string, violations []compliance.Violation) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			return
		}
		seen[kw] = true
		out = append(out, kw)
	}

	add(workType)
	for _, v := range violations {
		add(v.CodeSection)
		for _, word := range strings.FieldsFunc(v.Description, func(r rune) bool {
			return !isWordRune(r)
		}) {
			if len(word) >= minKeywordLen {
				add(word)
			}
		}
	}
	return out
}

// Match returns the clips where at least one keyword equals a trigger keyword
// case-insensitively or appears as a substring of title, content, or author.
// Output preserves corpus order; no scoring. A simple containment match is
// intentional: the corpus is small and curated.
func Match(clips []Clip, keywords []string) []Clip {
	if len(keywords) == 0 {
		return nil
	}
	var out []Clip
	for _, c := range clips {
		if clipMatches(c, keywords) {
			out = append(out, c)
		}
	}
	return out
}

func clipMatches(c Clip, keywords []string) bool {
	title := strings.ToLower(c.Title)
	content := strings.ToLower(c.Content)
	author := strings.ToLower(c.Author)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		for _, trigger := range c.TriggerKeywords {
			if strings.EqualFold(trigger, kw) {
				return true
			}
		}
		if strings.Contains(title, kw) || strings.Contains(content, kw) || strings.Contains(author, kw) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return false
}
