// Package countdown computes the time left until the wedding.
package countdown

import (
	"context"
	"time"
)

// Countdown is the remaining time split into display units.
type Countdown struct {
	Days     int64 `json:"days"`
	Hours    int64 `json:"hours"`
	Minutes  int64 `json:"minutes"`
	Seconds  int64 `json:"seconds"`
	Counting bool  `json:"counting"`
}

// Remaining returns the time from now until target. Once target has passed
// every unit is zero and Counting is false.
func Remaining(now, target time.Time) Countdown {
	left := target.Sub(now)
	if left <= 0 {
		return Countdown{}
	}
	secs := int64(left / time.Second)
	return Countdown{
		Days:     secs / 86400,
		Hours:    secs % 86400 / 3600,
		Minutes:  secs % 3600 / 60,
		Seconds:  secs % 60,
		Counting: true,
	}
}

// Clock returns the current time.
type Clock func() time.Time

// Run calls fn with the current countdown right away and then once per
// interval. It returns when ctx is done or after emitting the final zero frame.
func Run(ctx context.Context, clock Clock, target time.Time, interval time.Duration, fn func(Countdown) error) error {
	if clock == nil {
		clock = time.Now
	}
	if interval <= 0 {
		interval = time.Second
	}

	c := Remaining(clock(), target)
	if err := fn(c); err != nil {
		return err
	}
	if !c.Counting {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c = Remaining(clock(), target)
			if err := fn(c); err != nil {
				return err
			}
			if !c.Counting {
				return nil
			}
		}
	}
}
