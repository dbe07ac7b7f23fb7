// Package timeparse parses and renders stage times.
//
// The input grammar is [H+:]MM:SS[.fff]: an optional hour component of any
// magnitude, minutes, seconds, and an optional fraction. The canonical form
// written to storage is H:MM:SS.ffffff with microsecond precision; canonical
// output always re-parses to the same duration.
package timeparse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

const (
	microDigits  = 6
	segmentLimit = 60

	// maxHours keeps the total below the int64 nanosecond ceiling; the
	// spare hour absorbs the minute, second and fraction segments.
	maxHours = math.MaxInt64/int64(time.Hour) - 1
)

// stageTimeRe accepts one- or two-digit minute and second segments so that
// shorthand like "2:10" keeps working alongside the canonical "0:02:10.000000".
var stageTimeRe = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{1,2})(?:\.(\d+))?$`)

// Parse converts a stage time string to a duration.
// It wraps ErrInvalidDuration for any input outside the grammar.
func Parse(s string) (time.Duration, error) {
	m := stageTimeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var hours int64
	if m[1] != "" {
		h, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, s, err)
		}
		if h > maxHours {
			return 0, fmt.Errorf("%w: %q: hour segment exceeds %d", ErrInvalidDuration, s, maxHours)
		}
		hours = h
	}
	minutes, _ := strconv.ParseInt(m[2], 10, 64)
	seconds, _ := strconv.ParseInt(m[3], 10, 64)
	if minutes >= segmentLimit || seconds >= segmentLimit {
		return 0, fmt.Errorf("%w: %q: minute and second segments must be below %d", ErrInvalidDuration, s, segmentLimit)
	}

	micros, err := parseFraction(m[4])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, s, err)
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(micros)*time.Microsecond
	return d, nil
}

// parseFraction converts the fractional-second digits to microseconds.
// Digits beyond microsecond precision are truncated.
func parseFraction(frac string) (int64, error) {
	if frac == "" {
		return 0, nil
	}
	if len(frac) > microDigits {
		frac = frac[:microDigits]
	}
	micros, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	for i := len(frac); i < microDigits; i++ {
		micros *= 10
	}
	return micros, nil
}

// Render converts a duration to the canonical H:MM:SS.ffffff form.
func Render(d time.Duration) string {
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	micros := d / time.Microsecond
	return fmt.Sprintf("%d:%02d:%02d.%06d", hours, minutes, seconds, micros)
}

// Canonical parses s and re-renders it in canonical form.
func Canonical(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Render(d), nil
}
