package entity

import (
	"fmt"
	"time"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Valid reports whether Start < End. Zero-length windows are invalid.
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps reports whether the two windows share any instant.
// Touching endpoints do not overlap; an empty or inverted window overlaps nothing.
func (i Interval) Overlaps(other Interval) bool {
	return i.Valid() && other.Valid() &&
		i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether Start <= t < End.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// Overlaps is the free-function form of Interval.Overlaps.
func Overlaps(a, b Interval) bool {
	return a.Overlaps(b)
}

// Contains is the free-function form of Interval.Contains.
func Contains(window Interval, point time.Time) bool {
	return window.Contains(point)
}
