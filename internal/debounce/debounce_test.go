package debounce_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/tally/internal/debounce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock collects scheduled callbacks so tests fire them explicitly.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every callback, including stopped ones, to mimic timers that
// fire while being stopped.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func TestSchedule_BurstRunsOnlyLast(t *testing.T) {
	clock := &manualClock{}
	s := debounce.New(debounce.WithAfterFunc(clock.AfterFunc))

	var ran []int
	for i := 0; i < 5; i++ {
		i := i
		superseded := s.Schedule("resize", 250*time.Millisecond, func() { ran = append(ran, i) })
		assert.Equal(t, i > 0, superseded)
	}

	clock.fireAll()

	assert.Equal(t, []int{4}, ran)
	assert.False(t, s.Pending("resize"))
}

func TestSchedule_KeysAreIndependent(t *testing.T) {
	clock := &manualClock{}
	s := debounce.New(debounce.WithAfterFunc(clock.AfterFunc))

	var a, b int
	s.Schedule("a", time.Second, func() { a++ })
	s.Schedule("b", time.Second, func() { b++ })

	clock.fireAll()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestCancel(t *testing.T) {
	clock := &manualClock{}
	s := debounce.New(debounce.WithAfterFunc(clock.AfterFunc))

	var ran bool
	s.Schedule("resize", time.Second, func() { ran = true })
	assert.True(t, s.Cancel("resize"))
	assert.False(t, s.Cancel("resize"))

	clock.fireAll()
	assert.False(t, ran)
}

func TestCancelAll(t *testing.T) {
	clock := &manualClock{}
	s := debounce.New(debounce.WithAfterFunc(clock.AfterFunc))

	var ran int
	s.Schedule("a", time.Second, func() { ran++ })
	s.Schedule("b", time.Second, func() { ran++ })
	s.CancelAll()

	clock.fireAll()
	assert.Equal(t, 0, ran)
}

func TestSchedule_RealTimer(t *testing.T) {
	s := debounce.New()

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		s.Schedule("resize", 30*time.Millisecond, func() { count.Add(1) })
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}
