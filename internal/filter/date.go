package filter

import (
	"time"

	"github.com/samber/mo"
)

// future dates within this window are accepted (timezone skew between board and scraper)
const futureTolerance = 2 * 24 * time.Hour

// IsRecent reports whether a posting date lies within maxAge of now.
// A posting without a date is kept, as is any posting when maxAge is zero.
func IsRecent(datePosted mo.Option[time.Time], now time.Time, maxAge time.Duration) bool {
	posted, ok := datePosted.Get()
	if !ok || maxAge <= 0 {
		return true
	}
	return isWithin(now, posted, maxAge)
}

func isWithin(now, posted time.Time, maxAge time.Duration) bool {
	diff := now.Sub(posted)
	//reject if older than the window
	if diff > maxAge {
		return false
	}
	//reject far-future dates
	if diff < -futureTolerance {
		return false
	}
	return true
}
