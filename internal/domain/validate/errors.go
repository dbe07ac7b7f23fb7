package validate

import (
	"errors"

	"github.com/xlsrln/cat-bot/internal/domain/timeparse"
)

// Sentinel kinds for field validation. ErrInvalidDuration is re-exported so
// callers can match every validation failure against this package.
var (
	ErrInvalidDuration  = timeparse.ErrInvalidDuration
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidURL       = errors.New("invalid video link")
)
