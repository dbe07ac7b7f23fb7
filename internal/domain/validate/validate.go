// Package validate normalizes raw submission fields into canonical form.
//
// Submission is a pure function: it either returns a record whose every field
// is in canonical string form, ready to become a data row, or a tagged error
// naming the first field that failed. It performs no store reads; uniqueness
// and referential checks belong to the domain rules.
package validate

import (
	"fmt"
	"net/url"
	"time"

	"github.com/xlsrln/cat-bot/internal/domain/schema"
	"github.com/xlsrln/cat-bot/internal/domain/timeparse"
)

// TimestampLayout is the fixed ISO-8601 representation stored for
// submission_datetime. Timestamps are normalized to UTC first.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Raw carries the unvalidated fields of one submit request. SubmittedAt is
// server-assigned by the caller, never user input.
type Raw struct {
	UserName       string
	SubmittedAt    time.Time
	EventName      string
	Time           string
	VideoLink      string
	PowerstageTime string
}

// Submission validates and normalizes raw into a storable record.
func Submission(raw Raw) (schema.Submission, error) {
	stageTime, err := timeparse.Canonical(raw.Time)
	if err != nil {
		return schema.Submission{}, fmt.Errorf("time: %w", err)
	}

	// Absent powerstage time renders to the canonical empty string.
	powerstage := ""
	if raw.PowerstageTime != "" {
		powerstage, err = timeparse.Canonical(raw.PowerstageTime)
		if err != nil {
			return schema.Submission{}, fmt.Errorf("powerstage_time: %w", err)
		}
	}

	submittedAt, err := Timestamp(raw.SubmittedAt)
	if err != nil {
		return schema.Submission{}, err
	}

	link, err := VideoLink(raw.VideoLink)
	if err != nil {
		return schema.Submission{}, err
	}

	return schema.Submission{
		UserName:           raw.UserName,
		SubmissionDatetime: submittedAt,
		EventName:          raw.EventName,
		Time:               stageTime,
		VideoLink:          link,
		PowerstageTime:     powerstage,
	}, nil
}

// Timestamp normalizes a server-assigned timestamp to the stored form.
func Timestamp(ts time.Time) (string, error) {
	if ts.IsZero() {
		return "", fmt.Errorf("%w: zero timestamp", ErrInvalidTimestamp)
	}
	return ts.UTC().Format(TimestampLayout), nil
}

// VideoLink checks that link is an absolute http or https URL and returns it
// unchanged; the URL itself is the canonical form.
func VideoLink(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, link, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q: scheme must be http or https", ErrInvalidURL, link)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q: missing host", ErrInvalidURL, link)
	}
	return link, nil
}
