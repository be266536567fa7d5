package filter

import (
	"strings"
)

// DefaultIrrelevantLimit is the number of consecutive off-topic postings
// after which collection for a search category stops.
const DefaultIrrelevantLimit = 5

// RelevanceGuard tracks a run of consecutive postings whose title does not
// mention the search category. Result pages are ordered by relevance, so a
// long run means the board has moved on to unrelated jobs.
//
// A guard is used by one collector goroutine and is not safe for concurrent use.
type RelevanceGuard struct {
	keyword string
	limit   int
	streak  int
}

func NewRelevanceGuard(searchCategory string, limit int) *RelevanceGuard {
	if limit <= 0 {
		limit = DefaultIrrelevantLimit
	}
	return &RelevanceGuard{
		keyword: strings.ToLower(strings.TrimSpace(searchCategory)),
		limit:   limit,
	}
}

// IsRelevant reports whether title mentions the search category, ignoring case.
func (g *RelevanceGuard) IsRelevant(title string) bool {
	return strings.Contains(strings.ToLower(title), g.keyword)
}

// Observe records one posting title. It returns false once the streak of
// irrelevant titles reaches the limit; the caller should then stop opening
// postings but still keep what it has already collected.
func (g *RelevanceGuard) Observe(title string) bool {
	if g.IsRelevant(title) {
		g.streak = 0
		return true
	}
	g.streak++
	return g.streak < g.limit
}

// Exhausted reports whether the limit has been reached.
func (g *RelevanceGuard) Exhausted() bool {
	return g.streak >= g.limit
}

func (g *RelevanceGuard) Streak() int {
	return g.streak
}

// Reset starts a fresh streak, e.g. for the next search category.
func (g *RelevanceGuard) Reset() {
	g.streak = 0
}
