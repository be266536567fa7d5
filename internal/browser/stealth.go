package browser

import (
	"context"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DelayRange is a closed interval for randomised pauses.
type DelayRange struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Pick returns a random duration in [Min, Max].
func (d DelayRange) Pick() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(int64(d.Max-d.Min)+1))
}

// RandomDelay waits for a random duration in d, or until ctx is done.
func RandomDelay(ctx context.Context, d DelayRange) error {
	wait := d.Pick()
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// HumanScroll scrolls down in steps so lazily loaded result cards render.
func HumanScroll(ctx context.Context, page playwright.Page) error {
	step := DelayRange{Min: 300 * time.Millisecond, Max: 800 * time.Millisecond}
	for i := 0; i < 4; i++ {
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight / 2)"); err != nil {
			return err
		}
		if err := RandomDelay(ctx, step); err != nil {
			return err
		}
	}
	// scroll back up a bit
	_, err := page.Evaluate("window.scrollBy(0, -200)")
	return err
}
