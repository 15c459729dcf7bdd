// Package scheduler owns named, cancellable timers. Every periodic or
// delayed piece of game work (passive ticks, power-up spawns, flight
// expiry, boost countdowns) is registered under a name so it can be
// cancelled individually or torn down wholesale when a session ends.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler registers named timers. Replacing a name cancels its previous
// timer first, so a given concern never runs twice concurrently.
type Scheduler struct {
	mu      sync.Mutex
	gen     uint64
	timers  map[string]*timerEntry
	tickers map[string]*tickerEntry
	stopped bool
}

// timerEntry carries the generation stamped when the timer was armed. A
// fire whose generation no longer matches the registered entry lost its
// name to Cancel or a replacement and is discarded.
type timerEntry struct {
	timer *time.Timer
	gen   uint64
}

type tickerEntry struct {
	ticker *time.Ticker
	done   chan struct{}
}

func New() *Scheduler {
	return &Scheduler{
		timers:  make(map[string]*timerEntry),
		tickers: make(map[string]*tickerEntry),
	}
}

// After runs fn once after d, under the given name. The name is released
// before fn runs, so fn may re-arm itself.
func (s *Scheduler) After(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.cancelTimerLocked(name)
	s.gen++
	gen := s.gen
	s.timers[name] = &timerEntry{
		timer: time.AfterFunc(d, func() { s.fire(name, gen, fn) }),
		gen:   gen,
	}
}

// fire runs fn only when gen still owns its name. A timer that was
// cancelled or replaced after its goroutine started but before it reached
// the lock is discarded here.
func (s *Scheduler) fire(name string, gen uint64, fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	current, ok := s.timers[name]
	if !ok || current.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, name)
	s.mu.Unlock()

	fn()
}

// Every runs fn on a fixed cadence until the name is cancelled or the
// scheduler stops.
func (s *Scheduler) Every(name string, period time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.cancelTickerLocked(name)
	entry := &tickerEntry{
		ticker: time.NewTicker(period),
		done:   make(chan struct{}),
	}
	s.tickers[name] = entry

	go func() {
		for {
			select {
			case <-entry.done:
				return
			case <-entry.ticker.C:
				fn()
			}
		}
	}()
}

// Cancel stops the named timer or ticker if it is armed. A fired or unknown
// name is a no-op.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimerLocked(name)
	s.cancelTickerLocked(name)
}

// Active reports whether the name currently has an armed timer or a running
// ticker.
func (s *Scheduler) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timers[name]; ok {
		return true
	}
	_, ok := s.tickers[name]
	return ok
}

// Stop cancels everything and refuses further registrations. Pending work
// is abandoned without side effects.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for name := range s.timers {
		s.cancelTimerLocked(name)
	}
	for name := range s.tickers {
		s.cancelTickerLocked(name)
	}
}

func (s *Scheduler) cancelTimerLocked(name string) {
	if entry, ok := s.timers[name]; ok {
		entry.timer.Stop()
		delete(s.timers, name)
	}
}

func (s *Scheduler) cancelTickerLocked(name string) {
	if entry, ok := s.tickers[name]; ok {
		entry.ticker.Stop()
		close(entry.done)
		delete(s.tickers, name)
	}
}
