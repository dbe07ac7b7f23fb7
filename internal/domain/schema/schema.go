// Package schema fixes the layout of the two logical tables and converts
// between typed records and positional rows. Column order is the contract for
// row construction: the store never interprets values, so every caller builds
// and reads rows through this package.
package schema

import (
	"fmt"
	"strings"
)

// Descriptor names a logical table and fixes its column order.
type Descriptor struct {
	Table   string
	Columns []string
}

// Header returns a copy of the column list, safe to hand to the store.
func (d Descriptor) Header() []string {
	header := make([]string, len(d.Columns))
	copy(header, d.Columns)
	return header
}

// Index returns the position of column in the descriptor.
func (d Descriptor) Index(column string) (int, bool) {
	for i, c := range d.Columns {
		if c == column {
			return i, true
		}
	}
	return 0, false
}

// Column names shared by descriptors and domain rules.
const (
	ColEventName          = "event_name"
	ColHasPowerstage      = "has_powerstage"
	ColUserName           = "user_name"
	ColSubmissionDatetime = "submission_datetime"
	ColTime               = "time"
	ColVideoLink          = "video_link"
	ColPowerstageTime     = "powerstage_time"
)

// Events describes the event dimension table.
var Events = Descriptor{
	Table:   "events",
	Columns: []string{ColEventName, ColHasPowerstage},
}

// Submissions describes the submission fact table.
var Submissions = Descriptor{
	Table: "submissions",
	Columns: []string{
		ColUserName,
		ColSubmissionDatetime,
		ColEventName,
		ColTime,
		ColVideoLink,
		ColPowerstageTime,
	},
}

// Event is one data row of the events table.
type Event struct {
	Name          string
	HasPowerstage bool
}

// Row renders the event in Events column order.
func (e Event) Row() []string {
	return []string{e.Name, FormatBool(e.HasPowerstage)}
}

// EventFromRow parses a stored events row.
func EventFromRow(row []string) (Event, error) {
	if len(row) != len(Events.Columns) {
		return Event{}, fmt.Errorf("events row has %d values, want %d", len(row), len(Events.Columns))
	}
	flag, err := ParseBool(row[1])
	if err != nil {
		return Event{}, err
	}
	return Event{Name: row[0], HasPowerstage: flag}, nil
}

// Submission is one data row of the submissions table.
// All fields hold canonical string forms.
type Submission struct {
	UserName           string
	SubmissionDatetime string
	EventName          string
	Time               string
	VideoLink          string
	PowerstageTime     string
}

// Row renders the submission in Submissions column order.
func (s Submission) Row() []string {
	return []string{
		s.UserName,
		s.SubmissionDatetime,
		s.EventName,
		s.Time,
		s.VideoLink,
		s.PowerstageTime,
	}
}

// SubmissionFromRow parses a stored submissions row.
func SubmissionFromRow(row []string) (Submission, error) {
	if len(row) != len(Submissions.Columns) {
		return Submission{}, fmt.Errorf("submissions row has %d values, want %d", len(row), len(Submissions.Columns))
	}
	return Submission{
		UserName:           row[0],
		SubmissionDatetime: row[1],
		EventName:          row[2],
		Time:               row[3],
		VideoLink:          row[4],
		PowerstageTime:     row[5],
	}, nil
}

// FormatBool renders a boolean in the canonical stored form.
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ParseBool reads a stored boolean. The sheet UI capitalizes booleans it
// recognizes, so matching is case-insensitive.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("could not convert %q to boolean", s)
	}
}
