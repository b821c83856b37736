// Package simulate generates demo gauge frames so the full read loop can
// run without hardware attached.
package simulate

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banshee-data/lsm6200/internal/fixedpoint"
	"github.com/banshee-data/lsm6200/internal/timeutil"
)

// Simulator produces readings uniformly spread around a standard value,
// quantized to five decimal places like the device itself reports.
type Simulator struct {
	Standard decimal.Decimal
	Spread   decimal.Decimal
	Unit     string
}

// New creates a Simulator. A zero spread produces the standard value on
// every reading.
func New(standard, spread decimal.Decimal, unit string) *Simulator {
	return &Simulator{Standard: standard, Spread: spread, Unit: unit}
}

// Next returns one simulated reading at five decimal places.
func (s *Simulator) Next() decimal.Decimal {
	spread, _ := s.Spread.Float64()
	delta := (rand.Float64()*2 - 1) * spread
	raw := s.Standard.Add(decimal.NewFromFloat(delta))
	return fixedpoint.RoundHalfUp(raw, 5)
}

// Frame renders one reading the way the device would put it on the wire,
// explicit sign and trailing unit, without the terminator.
func (s *Simulator) Frame() string {
	v := s.Next()
	sign := "+"
	if v.IsNegative() {
		sign = ""
	}
	if s.Unit == "" {
		return fmt.Sprintf("%s%s", sign, v.StringFixed(5))
	}
	return fmt.Sprintf("%s%s %s", sign, v.StringFixed(5), s.Unit)
}

// Feed writes terminator-delimited frames to w, one per interval, until the
// context is cancelled or a write fails.
func (s *Simulator) Feed(ctx context.Context, w io.Writer, terminator string, interval time.Duration, clock timeutil.Clock) error {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			if _, err := io.WriteString(w, s.Frame()+terminator); err != nil {
				return err
			}
		}
	}
}
