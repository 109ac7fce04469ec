// Package countdown implements the restartable wall-clock countdowns that
// drive the turn timer, the vote timer, and the matchmaking countdown.
package countdown

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTickPeriod is how often a running countdown re-renders. Remaining
// time is recomputed from the absolute deadline on every tick, so the period
// only bounds display latency, never accuracy.
const DefaultTickPeriod = 250 * time.Millisecond

// Event is delivered to the owner's channel on every tick and exactly once on
// expiry. Gen identifies the run that produced it: events from a cancelled or
// restarted run fail the owner's Owns check and must be ignored.
type Event struct {
	Name      string
	Gen       int
	Remaining int
	Expired   bool
}

// Countdown is a single logical countdown. Start, Cancel, Remaining and
// Active must all be called from the owning event loop; only the internal
// ticking goroutine runs concurrently, and it communicates solely through the
// out channel.
type Countdown struct {
	name     string
	clock    clockwork.Clock
	period   time.Duration
	out      chan<- Event
	gen      int
	deadline time.Time
	stop     chan struct{}
}

func New(name string, clock clockwork.Clock, period time.Duration, out chan<- Event) *Countdown {
	if period <= 0 {
		period = DefaultTickPeriod
	}
	return &Countdown{name: name, clock: clock, period: period, out: out}
}

// Start arms the countdown for the given duration. A running countdown is
// cancelled first: there is never more than one active ticker per Countdown.
func (c *Countdown) Start(seconds int) {
	c.Cancel()
	c.gen++
	c.deadline = c.clock.Now().Add(time.Duration(seconds) * time.Second)
	c.stop = make(chan struct{})
	go c.run(c.gen, c.deadline, c.stop)
}

// Cancel stops ticking and clears the deadline. Safe to call when idle or
// already expired.
func (c *Countdown) Cancel() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.deadline = time.Time{}
}

// Active reports whether a deadline is armed and not yet expired.
func (c *Countdown) Active() bool {
	return c.stop != nil && c.Remaining() > 0
}

// Remaining is the whole seconds left until the deadline, recomputed from the
// clock so scheduling jitter never accumulates.
func (c *Countdown) Remaining() int {
	return remainingAt(c.deadline, c.clock.Now())
}

// Owns reports whether an event came from the current run of this countdown.
func (c *Countdown) Owns(ev Event) bool {
	return ev.Name == c.name && ev.Gen == c.gen && c.stop != nil
}

func (c *Countdown) run(gen int, deadline time.Time, stop chan struct{}) {
	ticker := c.clock.NewTicker(c.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			rem := remainingAt(deadline, c.clock.Now())
			ev := Event{Name: c.name, Gen: gen, Remaining: rem, Expired: rem <= 0}
			if ev.Expired {
				// The terminal observation must not be lost.
				select {
				case c.out <- ev:
				case <-stop:
				}
				return
			}
			// Render ticks are droppable if the owner is busy.
			select {
			case c.out <- ev:
			default:
			}
		}
	}
}

func remainingAt(deadline, now time.Time) int {
	if deadline.IsZero() {
		return 0
	}
	rem := deadline.Sub(now)
	if rem <= 0 {
		return 0
	}
	return int((rem + time.Second/2) / time.Second)
}
