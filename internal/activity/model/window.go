package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the dd/mm/yyyy layout accepted by the query API.
const DateLayout = "02/01/2006"

// Window is a closed time interval [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsEmpty reports whether the window is inverted and therefore matches nothing.
func (w Window) IsEmpty() bool {
	return w.Start.After(w.End)
}

// Contains reports whether t lies within the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ParseDate parses a dd/mm/yyyy date as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// ParseWindow builds a window from optional dd/mm/yyyy bounds.
// Absent bounds are taken from fallback. An explicit end date covers the whole day.
func ParseWindow(startValue, endValue string, fallback Window) (Window, error) {
	w := fallback
	if startValue != "" {
		start, err := ParseDate(startValue)
		if err != nil {
			return Window{}, err
		}
		w.Start = start
	}
	if endValue != "" {
		end, err := ParseDate(endValue)
		if err != nil {
			return Window{}, err
		}
		w.End = end.Add(24*time.Hour - time.Nanosecond)
	}
	return w, nil
}
