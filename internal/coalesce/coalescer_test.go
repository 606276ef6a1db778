// ABOUTME: Tests for the keyed write coalescer
// ABOUTME: Verifies batching, per-key independence, and drain-on-close guarantees
package coalesce

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	flushes map[string][]string
}

func newRecorder() *recorder {
	return &recorder{flushes: make(map[string][]string)}
}

func (r *recorder) flush(key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes[key] = append(r.flushes[key], value)
	return nil
}

func (r *recorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flushes[key])
}

func (r *recorder) last(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	values := r.flushes[key]
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func concat(old, next string) string { return old + next }

func TestCoalescer_BurstProducesOneFlush(t *testing.T) {
	rec := newRecorder()
	c := New(30*time.Millisecond, concat, rec.flush, nil)
	defer func() { _ = c.Close() }()

	for i := 0; i < 50; i++ {
		if err := c.Schedule("k", "x"); err != nil {
			t.Fatalf("Schedule() error = %v", err)
		}
	}

	// Wait out the window plus slack for the timer goroutine
	time.Sleep(120 * time.Millisecond)

	if got := rec.count("k"); got != 1 {
		t.Errorf("flush count = %d, want 1 for one burst", got)
	}
	if got := rec.last("k"); len(got) != 50 {
		t.Errorf("flushed value length = %d, want 50 merged updates", len(got))
	}
}

func TestCoalescer_SteadyStreamFlushesPerWindow(t *testing.T) {
	rec := newRecorder()
	c := New(40*time.Millisecond, concat, rec.flush, nil)
	defer func() { _ = c.Close() }()

	// Keep updates arriving faster than the window for several window
	// lengths. The first update starts the timer and later updates must not
	// reset it, so flushes keep happening while the stream is still hot.
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if err := c.Schedule("k", "x"); err != nil {
			t.Fatalf("Schedule() error = %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := rec.count("k"); got < 2 {
		t.Errorf("flush count = %d, want at least 2 while the stream stays hot", got)
	}
}

func TestCoalescer_KeysAreIndependent(t *testing.T) {
	rec := newRecorder()
	c := New(30*time.Millisecond, concat, rec.flush, nil)
	defer func() { _ = c.Close() }()

	if err := c.Schedule("a", "1"); err != nil {
		t.Fatalf("Schedule(a) error = %v", err)
	}
	if err := c.Schedule("b", "2"); err != nil {
		t.Fatalf("Schedule(b) error = %v", err)
	}

	time.Sleep(120 * time.Millisecond)

	if rec.count("a") != 1 || rec.count("b") != 1 {
		t.Errorf("flushes a=%d b=%d, want one each", rec.count("a"), rec.count("b"))
	}
	if rec.last("a") != "1" || rec.last("b") != "2" {
		t.Errorf("values a=%q b=%q", rec.last("a"), rec.last("b"))
	}
}

func TestCoalescer_FlushSkipsWindow(t *testing.T) {
	rec := newRecorder()
	c := New(time.Hour, concat, rec.flush, nil)
	defer func() { _ = c.Close() }()

	if err := c.Schedule("k", "now"); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := c.Flush("k"); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if rec.count("k") != 1 || rec.last("k") != "now" {
		t.Errorf("flushes = %v", rec.flushes)
	}

	// Nothing pending afterwards
	if err := c.Flush("k"); err != nil {
		t.Fatalf("second Flush() error = %v", err)
	}
	if rec.count("k") != 1 {
		t.Error("flushing an empty key should be a no-op")
	}
}

func TestCoalescer_CloseDrainsPending(t *testing.T) {
	rec := newRecorder()
	c := New(time.Hour, concat, rec.flush, nil)

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Schedule(key, key); err != nil {
			t.Fatalf("Schedule(%s) error = %v", key, err)
		}
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for _, key := range []string{"a", "b", "c"} {
		if rec.count(key) != 1 {
			t.Errorf("key %s flushed %d times, want 1", key, rec.count(key))
		}
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 after Close", c.Pending())
	}
}

func TestCoalescer_ScheduleAfterClose(t *testing.T) {
	c := New(time.Hour, concat, func(string, string) error { return nil }, nil)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Schedule("k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("Schedule() error = %v, want ErrClosed", err)
	}
}

func TestCoalescer_FlushErrorReachesCallback(t *testing.T) {
	boom := errors.New("boom")
	var (
		mu     sync.Mutex
		gotKey string
		gotErr error
	)
	c := New(10*time.Millisecond, concat,
		func(string, string) error { return boom },
		func(key string, err error) {
			mu.Lock()
			defer mu.Unlock()
			gotKey, gotErr = key, err
		},
	)

	if err := c.Schedule("k", "v"); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if gotKey != "k" || !errors.Is(gotErr, boom) {
		t.Errorf("callback got key=%q err=%v", gotKey, gotErr)
	}
}

func TestCoalescer_CloseReportsFlushError(t *testing.T) {
	boom := errors.New("boom")
	c := New(time.Hour, concat, func(string, string) error { return boom }, nil)

	if err := c.Schedule("k", "v"); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := c.Close(); !errors.Is(err, boom) {
		t.Errorf("Close() error = %v, want boom", err)
	}
}
