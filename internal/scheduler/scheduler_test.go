package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAfterFires(t *testing.T) {
	s := New()
	defer s.Stop()

	fired := make(chan struct{})
	s.After("spawn", 10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	assert.False(t, s.Active("spawn"), "name is released once fired")
}

func TestAfterReplacesPrevious(t *testing.T) {
	s := New()
	defer s.Stop()

	var first atomic.Bool
	fired := make(chan struct{})

	s.After("spawn", 20*time.Millisecond, func() { first.Store(true) })
	s.After("spawn", 30*time.Millisecond, func() { close(fired) })

	<-fired
	assert.False(t, first.Load(), "replaced timer must not fire")
}

func TestCancel(t *testing.T) {
	s := New()
	defer s.Stop()

	var fired atomic.Bool
	s.After("flight", 20*time.Millisecond, func() { fired.Store(true) })
	s.Cancel("flight")

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.False(t, s.Active("flight"))
}

func TestEveryTicksUntilCancelled(t *testing.T) {
	s := New()
	defer s.Stop()

	var ticks atomic.Int64
	s.Every("passive", 10*time.Millisecond, func() { ticks.Add(1) })

	time.Sleep(100 * time.Millisecond)
	s.Cancel("passive")
	seen := ticks.Load()
	assert.Greater(t, seen, int64(2))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, seen, ticks.Load(), "no ticks after cancel")
}

func TestStopAbandonsEverything(t *testing.T) {
	s := New()

	var fired atomic.Bool
	s.After("a", 20*time.Millisecond, func() { fired.Store(true) })
	s.Every("b", 10*time.Millisecond, func() { fired.Store(true) })
	s.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())

	// registrations after Stop are ignored
	s.After("c", time.Millisecond, func() { fired.Store(true) })
	time.Sleep(20 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestFireAfterCancelIsDiscarded(t *testing.T) {
	s := New()
	defer s.Stop()

	var fired atomic.Bool
	s.After("spawn", time.Hour, func() { fired.Store(true) })

	s.mu.Lock()
	gen := s.timers["spawn"].gen
	s.mu.Unlock()

	// the fire that was already in flight when Cancel won the lock
	s.Cancel("spawn")
	s.fire("spawn", gen, func() { fired.Store(true) })

	assert.False(t, fired.Load())
	assert.False(t, s.Active("spawn"))
}

func TestFireAfterReplaceIsDiscarded(t *testing.T) {
	s := New()
	defer s.Stop()

	var stale atomic.Bool
	s.After("spawn", time.Hour, func() { stale.Store(true) })

	s.mu.Lock()
	oldGen := s.timers["spawn"].gen
	s.mu.Unlock()

	replaced := make(chan struct{})
	s.After("spawn", 10*time.Millisecond, func() { close(replaced) })

	s.fire("spawn", oldGen, func() { stale.Store(true) })
	assert.False(t, stale.Load(), "stale fire must not run")

	select {
	case <-replaced:
	case <-time.After(time.Second):
		t.Fatal("replacement never fired")
	}
}
