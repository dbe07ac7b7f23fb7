// Package standings ranks the submissions of one event.
package standings

import (
	"fmt"
	"sort"
	"time"

	"github.com/xlsrln/cat-bot/internal/domain/schema"
	"github.com/xlsrln/cat-bot/internal/domain/timeparse"
)

// Entry pairs a 1-based rank with the submission that earned it.
type Entry struct {
	Rank       int
	Submission schema.Submission
}

// Rank orders rows ascending by parsed stage time, keeps each user's best
// row only, and assigns ranks 1..k. Ties keep the stored row order. An empty
// input yields an empty result, which callers must render as "no
// submissions" rather than an error.
//
// A stored time that no longer parses means the table drifted from the
// schema; that is a fault, not a user error.
func Rank(rows []schema.Submission) ([]Entry, error) {
	type timed struct {
		duration   time.Duration
		submission schema.Submission
	}

	parsed := make([]timed, 0, len(rows))
	for _, row := range rows {
		d, err := timeparse.Parse(row.Time)
		if err != nil {
			return nil, fmt.Errorf("stored time for %q: %w", row.UserName, err)
		}
		parsed = append(parsed, timed{duration: d, submission: row})
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].duration < parsed[j].duration
	})

	// One pass: the first occurrence of a user is their best time, later
	// rows for the same user are discarded. The ascending order from the
	// sort survives, so no re-sort is needed.
	seen := make(map[string]struct{}, len(parsed))
	entries := make([]Entry, 0, len(parsed))
	for _, t := range parsed {
		if _, dup := seen[t.submission.UserName]; dup {
			continue
		}
		seen[t.submission.UserName] = struct{}{}
		entries = append(entries, Entry{Rank: len(entries) + 1, Submission: t.submission})
	}
	return entries, nil
}
