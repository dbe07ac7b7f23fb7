// Package app implements the domain rules of the event submission system:
// the policies that combine tabular store reads with validated input before
// an append is allowed, and the read paths that feed the standings engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xlsrln/cat-bot/internal/adapters/tabular"
	"github.com/xlsrln/cat-bot/internal/domain/schema"
	"github.com/xlsrln/cat-bot/internal/domain/standings"
	"github.com/xlsrln/cat-bot/internal/domain/validate"
	"github.com/xlsrln/cat-bot/pkg/logger"
	"github.com/xlsrln/cat-bot/pkg/metrics"
)

// Rejection reason labels for metrics.
const (
	reasonValidation = "validation"
	reasonUnknown    = "event_not_registered"
	reasonDuplicate  = "duplicate"
	reasonPowerstage = "powerstage_mismatch"
)

// Service owns the two logical tables and enforces every domain rule. It is
// constructed with an explicit store handle; there is no process-wide
// document state.
type Service struct {
	store *tabular.Store

	// Per-table locks close the check-then-append race inside this
	// process. The store itself stays lock-free.
	eventsMu      sync.Mutex
	submissionsMu sync.Mutex

	events      *tabular.Table
	submissions *tabular.Table

	log     logger.Logger
	metrics *metrics.Manager
	now     func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics enables business metrics on the given manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the submission timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service over store. Call Start before any operation.
func New(store *tabular.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   logger.Get().Named("app"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start ensures both logical tables exist. Their stored headers stay
// authoritative; drift surfaces later as column faults.
func (s *Service) Start(ctx context.Context) error {
	events, err := s.store.EnsureTable(ctx, schema.Events.Table, schema.Events.Header())
	if err != nil {
		return fmt.Errorf("ensure events table: %w", err)
	}
	submissions, err := s.store.EnsureTable(ctx, schema.Submissions.Table, schema.Submissions.Header())
	if err != nil {
		return fmt.Errorf("ensure submissions table: %w", err)
	}
	s.events = events
	s.submissions = submissions
	s.log.Info(ctx, "tables ready",
		logger.String("events", events.Name()),
		logger.String("submissions", submissions.Name()))
	return nil
}

// SpreadsheetURL reports the backing document's browser address.
func (s *Service) SpreadsheetURL() string { return s.store.URL() }

// EventNames lists all registered event names in stored order.
func (s *Service) EventNames(ctx context.Context) ([]string, error) {
	return s.events.ColumnValues(ctx, schema.ColEventName)
}

// AddEvent registers a new event. The name must not already be present in
// the events table; matching is case-sensitive and exact.
func (s *Service) AddEvent(ctx context.Context, name string, hasPowerstage bool) (schema.Event, error) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	_, err := s.events.FindRow(ctx, schema.ColEventName, name)
	switch {
	case err == nil:
		return schema.Event{}, fmt.Errorf("%w: %q", ErrEventExists, name)
	case !errors.Is(err, tabular.ErrRowNotFound):
		return schema.Event{}, err
	}

	event := schema.Event{Name: name, HasPowerstage: hasPowerstage}
	if err := s.events.AppendRow(ctx, event.Row()); err != nil {
		return schema.Event{}, err
	}
	if s.metrics != nil {
		s.metrics.IncEventAdded()
	}
	s.log.Info(ctx, "event added",
		logger.String("event", name),
		logger.Bool("has_powerstage", hasPowerstage))
	return event, nil
}

// SubmitRequest carries the raw fields of one submission attempt.
type SubmitRequest struct {
	UserName       string
	EventName      string
	Time           string
	VideoLink      string
	PowerstageTime string
}

// Submit runs the full submission state machine: validate the raw fields,
// require a registered event, reject duplicate video links, require the
// powerstage time exactly when the event defines one, then append. Every
// rejection is terminal and reported to the caller as the returned error.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (schema.Submission, error) {
	sub, err := validate.Submission(validate.Raw{
		UserName:       req.UserName,
		SubmittedAt:    s.now(),
		EventName:      req.EventName,
		Time:           req.Time,
		VideoLink:      req.VideoLink,
		PowerstageTime: req.PowerstageTime,
	})
	if err != nil {
		return schema.Submission{}, s.reject(ctx, reasonValidation, err)
	}

	event, err := s.lookupEvent(ctx, sub.EventName)
	if errors.Is(err, ErrEventNotRegistered) {
		return schema.Submission{}, s.reject(ctx, reasonUnknown, err)
	}
	if err != nil {
		return schema.Submission{}, err
	}

	s.submissionsMu.Lock()
	defer s.submissionsMu.Unlock()

	_, err = s.submissions.FindRow(ctx, schema.ColVideoLink, sub.VideoLink)
	switch {
	case err == nil:
		return schema.Submission{}, s.reject(ctx, reasonDuplicate,
			fmt.Errorf("%w: video link %q was already submitted", ErrDuplicateSubmission, sub.VideoLink))
	case !errors.Is(err, tabular.ErrRowNotFound):
		return schema.Submission{}, err
	}

	// Exactly the two flag/presence mismatches reject; the two matching
	// combinations fall through.
	switch {
	case event.HasPowerstage && sub.PowerstageTime == "":
		return schema.Submission{}, s.reject(ctx, reasonPowerstage,
			fmt.Errorf("%w: event %q defines a powerstage", ErrPowerstageRequired, event.Name))
	case !event.HasPowerstage && sub.PowerstageTime != "":
		return schema.Submission{}, s.reject(ctx, reasonPowerstage,
			fmt.Errorf("%w: event %q defines no powerstage", ErrPowerstageNotAccepted, event.Name))
	}

	if err := s.submissions.AppendRow(ctx, sub.Row()); err != nil {
		return schema.Submission{}, err
	}
	if s.metrics != nil {
		s.metrics.IncSubmissionAccepted()
	}
	s.log.Info(ctx, "submission accepted",
		logger.String("user", sub.UserName),
		logger.String("event", sub.EventName),
		logger.String("time", sub.Time))
	return sub, nil
}

// Standings computes the ranked, per-user-deduplicated ordering for one
// event. An empty result means no submissions yet, which the caller renders
// distinctly; an unregistered event is rejected like a submit to it.
func (s *Service) Standings(ctx context.Context, eventName string) ([]standings.Entry, error) {
	if _, err := s.lookupEvent(ctx, eventName); err != nil {
		return nil, err
	}

	rows, err := s.submissions.AllRows(ctx)
	if err != nil {
		return nil, err
	}
	subs := make([]schema.Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := schema.SubmissionFromRow(row)
		if err != nil {
			return nil, err
		}
		if sub.EventName == eventName {
			subs = append(subs, sub)
		}
	}

	entries, err := standings.Rank(subs)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncStandingsServed()
	}
	return entries, nil
}

// lookupEvent resolves an event definition, translating a missing row into
// ErrEventNotRegistered with the currently known names attached.
func (s *Service) lookupEvent(ctx context.Context, name string) (schema.Event, error) {
	row, err := s.events.FindRow(ctx, schema.ColEventName, name)
	if errors.Is(err, tabular.ErrRowNotFound) {
		names, listErr := s.EventNames(ctx)
		if listErr != nil {
			return schema.Event{}, listErr
		}
		return schema.Event{}, fmt.Errorf("%w: %q. Registered events: %s",
			ErrEventNotRegistered, name, strings.Join(names, ", "))
	}
	if err != nil {
		return schema.Event{}, err
	}
	return schema.EventFromRow(row)
}

func (s *Service) reject(ctx context.Context, reason string, err error) error {
	if s.metrics != nil {
		s.metrics.IncSubmissionRejected(reason)
	}
	s.log.Debug(ctx, "submission rejected",
		logger.String("reason", reason),
		logger.Error(err))
	return err
}
