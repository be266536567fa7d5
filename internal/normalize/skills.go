package normalize

import (
	"regexp"
	"strings"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

// SkillMatcher finds whole-word keyword occurrences. Patterns are compiled
// once, so one matcher can serve a whole batch from many goroutines.
type SkillMatcher struct {
	keywords []string
	patterns []*regexp.Regexp
}

// NewSkillMatcher compiles a matcher for keywords, keeping their order.
func NewSkillMatcher(keywords []string) *SkillMatcher {
	m := &SkillMatcher{
		keywords: append([]string(nil), keywords...),
		patterns: make([]*regexp.Regexp, len(keywords)),
	}
	for i, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		// \b would never close after a symbol such as "C#", so the
		// boundary is spelled out as "no word character on either side"
		m.patterns[i] = regexp.MustCompile(`(?:^|[^\w])` + regexp.QuoteMeta(fold(kw)) + `(?:[^\w]|$)`)
	}
	return m
}

// Extract returns the keywords present in text, in keyword-table order.
func (m *SkillMatcher) Extract(text string) []string {
	found := []string{}
	if models.IsMissing(text) {
		return found
	}
	folded := fold(text)
	for i, p := range m.patterns {
		if p != nil && p.MatchString(folded) {
			found = append(found, m.keywords[i])
		}
	}
	return found
}

// ExtractSkills is a one-off convenience over NewSkillMatcher.
func ExtractSkills(text string, keywords []string) []string {
	return NewSkillMatcher(keywords).Extract(text)
}
