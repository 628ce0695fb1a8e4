package containers

import (
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
)

// backoff paces one operation's CAS retry loop. The zero-ish value returned
// by newBackoff costs nothing until the first failed retry, which is the
// overwhelmingly common case: an uncontended operation never calls wait.
type backoff struct {
	opts    *BackoffOptions
	clk     clock.Clock
	retries int
	delay   time.Duration
}

// wait is called after a lost CAS or a torn snapshot, never after a
// cooperative tail repair, which already made global progress. It spins
// first because the competing window is only a handful of instructions
// wide, then degrades to yielding, and sleeps only when the schedule says
// so.
func (b *backoff) wait() {
	b.retries++
	switch {
	case b.retries <= b.opts.SpinLimit:
		// busy retry; falling through to the caller's loop is the spin
	case b.opts.SleepBase.Duration <= 0 || b.retries <= b.opts.YieldLimit:
		runtime.Gosched()
	default:
		if b.delay == 0 {
			b.delay = b.opts.SleepBase.Duration
		} else if b.delay < b.opts.SleepCap.Duration {
			b.delay *= 2
			if b.delay > b.opts.SleepCap.Duration {
				b.delay = b.opts.SleepCap.Duration
			}
		}
		b.clk.Sleep(b.delay)
	}
}
