package simulate

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banshee-data/lsm6200/internal/protocol"
	"github.com/banshee-data/lsm6200/internal/timeutil"
)

func TestNext_WithinSpread(t *testing.T) {
	standard := decimal.RequireFromString("0.110")
	spread := decimal.RequireFromString("0.012")
	sim := New(standard, spread, "mm")

	lo, hi := standard.Sub(spread), standard.Add(spread)
	for i := 0; i < 1000; i++ {
		v := sim.Next()
		if v.LessThan(lo) || v.GreaterThan(hi) {
			t.Fatalf("Next() = %s, outside [%s, %s]", v, lo, hi)
		}
		if v.Exponent() < -5 {
			t.Fatalf("Next() = %s, more than five decimal places", v)
		}
	}
}

func TestNext_ZeroSpread(t *testing.T) {
	standard := decimal.RequireFromString("0.110")
	sim := New(standard, decimal.Zero, "mm")

	for i := 0; i < 10; i++ {
		if v := sim.Next(); !v.Equal(standard) {
			t.Fatalf("Next() = %s, want %s", v, standard)
		}
	}
}

func TestFrame_ParsesLikeDeviceOutput(t *testing.T) {
	sim := New(decimal.RequireFromString("0.110"), decimal.RequireFromString("0.012"), "mm")
	p := &protocol.Parser{}

	for i := 0; i < 100; i++ {
		frame := sim.Frame()
		m := p.ParseText(frame)
		if m == nil || m.Value == nil {
			t.Fatalf("frame %q did not parse to a value", frame)
		}
		if m.Unit != "mm" {
			t.Fatalf("frame %q unit = %q", frame, m.Unit)
		}
	}
}

type syncWriter struct {
	mu sync.Mutex
	b  strings.Builder
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

func TestFeed_WritesFramePerTick(t *testing.T) {
	sim := New(decimal.RequireFromString("0.110"), decimal.Zero, "mm")
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	var w syncWriter
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Feed(ctx, &w, "\r\n", time.Second, clock) }()

	deadline := time.Now().Add(5 * time.Second)
	for strings.Count(w.String(), "\r\n") < 3 && time.Now().Before(deadline) {
		clock.Advance(time.Second)
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	frames := strings.Split(strings.TrimSuffix(w.String(), "\r\n"), "\r\n")
	if len(frames) < 3 {
		t.Fatalf("got %d frames, want at least 3: %q", len(frames), frames)
	}
	for _, frame := range frames {
		if frame != "+0.11000 mm" {
			t.Errorf("frame = %q, want %q", frame, "+0.11000 mm")
		}
	}
}
