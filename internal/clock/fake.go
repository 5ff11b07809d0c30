package clock

import (
	"sync"
	"time"
)

// FakeClock is a Clock whose time only moves on Advance. It is safe for
// concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	tickers []*fakeTicker
	changed *sync.Cond
}

type fakeTicker struct {
	next     time.Time
	interval time.Duration
	ch       chan time.Time
	stopped  bool
}

// Fake returns a FakeClock set to initial.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.changed = sync.NewCond(&c.mu)
	return c
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTicker{
		next:     c.current.Add(d),
		interval: d,
		ch:       make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, t)
	c.changed.Broadcast()

	return &Ticker{
		C: t.ch,
		stopFunc: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			t.stopped = true
		},
	}
}

// Advance moves the clock forward by d and fires every ticker whose next
// tick falls within the new time, once per elapsed interval.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	for _, t := range c.tickers {
		for !t.stopped && !t.next.After(c.current) {
			select {
			case t.ch <- c.current:
			default:
			}
			t.next = t.next.Add(t.interval)
		}
	}
}

// WaitForTickers blocks until at least n running tickers exist. It closes
// the race between a goroutine creating its ticker and the test advancing.
func (c *FakeClock) WaitForTickers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.activeLocked() < n {
		c.changed.Wait()
	}
}

func (c *FakeClock) activeLocked() int {
	n := 0
	for _, t := range c.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}
