package app_test

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/xlsrln/cat-bot/internal/adapters/sheet"
	"github.com/xlsrln/cat-bot/internal/adapters/tabular"
	"github.com/xlsrln/cat-bot/internal/app"
	"github.com/xlsrln/cat-bot/internal/domain/schema"
	"github.com/xlsrln/cat-bot/internal/domain/validate"
	"github.com/xlsrln/cat-bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(io.Discard); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newService(ctx context.Context) (*app.Service, error) {
	doc := sheet.NewMemoryDocument(sheet.WithURL("mem://doc"))
	store := tabular.New(doc)
	svc := app.New(store, app.WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	}))
	return svc, svc.Start(ctx)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc, err := newService(ctx)
		So(err, ShouldBeNil)

		Convey("When registering a new event", func() {
			event, err := svc.AddEvent(ctx, "rally monte", true)

			Convey("Then the definition is stored", func() {
				So(err, ShouldBeNil)
				So(event, ShouldResemble, schema.Event{Name: "rally monte", HasPowerstage: true})
				names, err := svc.EventNames(ctx)
				So(err, ShouldBeNil)
				So(names, ShouldResemble, []string{"rally monte"})
			})
		})

		Convey("When registering the same name twice", func() {
			_, err := svc.AddEvent(ctx, "rally monte", true)
			So(err, ShouldBeNil)

			_, err = svc.AddEvent(ctx, "rally monte", false)

			Convey("Then the duplicate is rejected without appending", func() {
				So(err, ShouldWrap, app.ErrEventExists)
				names, listErr := svc.EventNames(ctx)
				So(listErr, ShouldBeNil)
				So(names, ShouldHaveLength, 1)
			})
		})

		Convey("When names differ only in case", func() {
			_, err := svc.AddEvent(ctx, "rally monte", false)
			So(err, ShouldBeNil)

			_, err = svc.AddEvent(ctx, "Rally Monte", false)

			Convey("Then matching is case-sensitive and both register", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func validRequest() app.SubmitRequest {
	return app.SubmitRequest{
		UserName:  "petter",
		EventName: "rally monte",
		Time:      "2:10",
		VideoLink: "https://example.com/run",
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with one plain event", t, func() {
		svc, err := newService(ctx)
		So(err, ShouldBeNil)
		_, err = svc.AddEvent(ctx, "rally monte", false)
		So(err, ShouldBeNil)

		Convey("When submitting a valid entry", func() {
			sub, err := svc.Submit(ctx, validRequest())

			Convey("Then the normalized record is echoed back", func() {
				So(err, ShouldBeNil)
				So(sub.UserName, ShouldEqual, "petter")
				So(sub.Time, ShouldEqual, "0:02:10.000000")
				So(sub.SubmissionDatetime, ShouldEqual, "2024-03-01T10:00:00.000000Z")
				So(sub.PowerstageTime, ShouldEqual, "")
			})

			Convey("Then the standings include it", func() {
				entries, err := svc.Standings(ctx, "rally monte")
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Submission.UserName, ShouldEqual, "petter")
			})
		})

		Convey("When the time is malformed", func() {
			req := validRequest()
			req.Time = "not a time"
			_, err := svc.Submit(ctx, req)

			So(err, ShouldWrap, validate.ErrInvalidDuration)
		})

		Convey("When the video link is malformed", func() {
			req := validRequest()
			req.VideoLink = "ftp://example.com/run"
			_, err := svc.Submit(ctx, req)

			So(err, ShouldWrap, validate.ErrInvalidURL)
		})

		Convey("When the event is not registered", func() {
			req := validRequest()
			req.EventName = "unknown stage"
			_, err := svc.Submit(ctx, req)

			Convey("Then the rejection lists the known events", func() {
				So(err, ShouldWrap, app.ErrEventNotRegistered)
				So(err.Error(), ShouldContainSubstring, "rally monte")
			})
		})

		Convey("When the event is unregistered and another field is bad too", func() {
			req := validRequest()
			req.EventName = "unknown stage"
			req.Time = "broken"
			_, err := svc.Submit(ctx, req)

			Convey("Then validation rejects first", func() {
				So(err, ShouldWrap, validate.ErrInvalidDuration)
			})
		})

		Convey("When the same video link is submitted twice", func() {
			_, err := svc.Submit(ctx, validRequest())
			So(err, ShouldBeNil)

			req := validRequest()
			req.UserName = "someone else"
			req.Time = "3:00"
			_, err = svc.Submit(ctx, req)

			Convey("Then the duplicate is rejected", func() {
				So(err, ShouldWrap, app.ErrDuplicateSubmission)
			})
		})
	})
}

func TestSubmitPowerstage(t *testing.T) {
	ctx := context.Background()

	Convey("Given events with and without a powerstage", t, func() {
		svc, err := newService(ctx)
		So(err, ShouldBeNil)
		_, err = svc.AddEvent(ctx, "with ps", true)
		So(err, ShouldBeNil)
		_, err = svc.AddEvent(ctx, "without ps", false)
		So(err, ShouldBeNil)

		Convey("When the event defines a powerstage and none is given", func() {
			req := validRequest()
			req.EventName = "with ps"
			_, err := svc.Submit(ctx, req)

			So(err, ShouldWrap, app.ErrPowerstageRequired)
		})

		Convey("When the event defines no powerstage and one is given", func() {
			req := validRequest()
			req.EventName = "without ps"
			req.PowerstageTime = "1:05"
			_, err := svc.Submit(ctx, req)

			So(err, ShouldWrap, app.ErrPowerstageNotAccepted)
		})

		Convey("When flag and presence agree", func() {
			withPs := validRequest()
			withPs.EventName = "with ps"
			withPs.PowerstageTime = "1:05"
			withPs.VideoLink = "https://example.com/ps-run"

			withoutPs := validRequest()
			withoutPs.EventName = "without ps"

			Convey("Then both submissions succeed", func() {
				sub, err := svc.Submit(ctx, withPs)
				So(err, ShouldBeNil)
				So(sub.PowerstageTime, ShouldEqual, "0:01:05.000000")

				sub, err = svc.Submit(ctx, withoutPs)
				So(err, ShouldBeNil)
				So(sub.PowerstageTime, ShouldEqual, "")
			})
		})
	})
}

func TestStandings(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with two events and several submissions", t, func() {
		svc, err := newService(ctx)
		So(err, ShouldBeNil)
		_, err = svc.AddEvent(ctx, "rally monte", false)
		So(err, ShouldBeNil)
		_, err = svc.AddEvent(ctx, "hill climb", false)
		So(err, ShouldBeNil)

		submit := func(user, event, stageTime, link string) {
			_, err := svc.Submit(ctx, app.SubmitRequest{
				UserName:  user,
				EventName: event,
				Time:      stageTime,
				VideoLink: link,
			})
			So(err, ShouldBeNil)
		}

		submit("alice", "rally monte", "2:10", "https://example.com/a1")
		submit("bob", "rally monte", "1:05", "https://example.com/b1")
		submit("alice", "rally monte", "1:50", "https://example.com/a2")
		submit("carol", "hill climb", "0:45", "https://example.com/c1")

		Convey("When asking for one event's standings", func() {
			entries, err := svc.Standings(ctx, "rally monte")

			Convey("Then rows from other events are excluded and users deduplicated", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[0].Submission.UserName, ShouldEqual, "bob")
				So(entries[1].Rank, ShouldEqual, 2)
				So(entries[1].Submission.UserName, ShouldEqual, "alice")
				So(entries[1].Submission.Time, ShouldEqual, "0:01:50.000000")
			})
		})

		Convey("When an event has no submissions", func() {
			_, err := svc.AddEvent(ctx, "fresh event", false)
			So(err, ShouldBeNil)
			entries, err := svc.Standings(ctx, "fresh event")

			Convey("Then the result is empty and not an error", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})

		Convey("When the event is not registered", func() {
			_, err := svc.Standings(ctx, "unknown stage")

			So(err, ShouldWrap, app.ErrEventNotRegistered)
		})
	})
}

func TestSpreadsheetURL(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc, err := newService(ctx)
		So(err, ShouldBeNil)

		Convey("Then it reports the backing document address", func() {
			So(svc.SpreadsheetURL(), ShouldEqual, "mem://doc")
		})
	})
}
