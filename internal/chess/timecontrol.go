package chess

import (
	"fmt"
	"time"
)

// TimeControl represents the time control settings for a game
type TimeControl struct {
	Type      string `json:"type"`      // "rapid", "blitz", "bullet", "untimed"
	Initial   int    `json:"initial"`   // Initial time in seconds
	Increment int    `json:"increment"` // Increment per move in seconds
}

// Clock is a two-sided chess clock. It only counts down when advanced
// explicitly; the caller measures elapsed wall time.
type Clock struct {
	initial   [2]time.Duration
	remaining [2]time.Duration
	increment time.Duration
	enabled   bool
}

// NewClock builds a clock from a time control. An Initial of zero yields a
// disabled clock.
func NewClock(tc TimeControl) *Clock {
	c := &Clock{}
	if tc.Initial > 0 {
		c.Set(time.Duration(tc.Initial)*time.Second, time.Duration(tc.Initial)*time.Second)
		c.increment = time.Duration(tc.Increment) * time.Second
	}
	return c
}

// Set resets both sides' remaining time and enables the clock.
func (c *Clock) Set(white, black time.Duration) {
	c.initial = [2]time.Duration{white, black}
	c.remaining = c.initial
	c.enabled = true
}

// Rearm restores the times last given to Set. A disabled clock stays
// disabled.
func (c *Clock) Rearm() {
	if c.enabled {
		c.remaining = c.initial
	}
}

func (c *Clock) restore(col Color, d time.Duration) {
	if c.enabled {
		c.remaining[col] = d
	}
}

// SetIncrement sets the time added after each completed move.
func (c *Clock) SetIncrement(d time.Duration) {
	c.increment = d
}

func (c *Clock) Enabled() bool { return c.enabled }

// Remaining returns the time left for color col.
func (c *Clock) Remaining(col Color) time.Duration {
	return c.remaining[col]
}

// Advance subtracts elapsed from col and reports whether its flag fell.
func (c *Clock) Advance(col Color, elapsed time.Duration) bool {
	if !c.enabled || elapsed <= 0 {
		return false
	}
	c.remaining[col] -= elapsed
	if c.remaining[col] <= 0 {
		c.remaining[col] = 0
		return true
	}
	return false
}

// Credit adds the increment to col after it completed a move.
func (c *Clock) Credit(col Color) {
	if c.enabled && c.remaining[col] > 0 {
		c.remaining[col] += c.increment
	}
}

// FormatTimeRemaining formats a clock reading as m:ss, or h:mm:ss past an hour.
func FormatTimeRemaining(remaining time.Duration) string {
	if remaining <= 0 {
		return "0:00"
	}
	total := int(remaining / time.Second)
	hours := total / 3600
	minutes := (total / 60) % 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
