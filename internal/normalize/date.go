package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

// daysPerMonth approximates a month; there is no calendar-month arithmetic.
const daysPerMonth = 30

var firstIntegerRegex = regexp.MustCompile(`\d+`)

// ParseDate resolves a relative phrase such as "Published: 2 weeks ago"
// against ref, the date the listing was scraped. Anything mentioning hours
// resolves to ref itself. The result is a UTC calendar date, or None when the
// phrase has no number or no recognised unit.
func ParseDate(text string, ref time.Time) mo.Option[time.Time] {
	if models.IsMissing(text) {
		return mo.None[time.Time]()
	}
	lower := strings.ToLower(text)
	day := CalendarDate(ref)

	if strings.Contains(lower, "hour") {
		return mo.Some(day)
	}

	match := firstIntegerRegex.FindString(lower)
	if match == "" {
		return mo.None[time.Time]()
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return mo.None[time.Time]()
	}

	var days int
	switch {
	case strings.Contains(lower, "week"):
		days = n * 7
	case strings.Contains(lower, "day"):
		days = n
	case strings.Contains(lower, "month"):
		days = n * daysPerMonth
	default:
		return mo.None[time.Time]()
	}

	return mo.Some(day.AddDate(0, 0, -days))
}

// CalendarDate drops the clock part of t, keeping its calendar day, in UTC.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
