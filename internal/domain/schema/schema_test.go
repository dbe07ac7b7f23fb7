package schema_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/xlsrln/cat-bot/internal/domain/schema"
)

func TestDescriptors(t *testing.T) {
	Convey("Given the table descriptors", t, func() {
		Convey("Then the events layout is fixed", func() {
			So(schema.Events.Table, ShouldEqual, "events")
			So(schema.Events.Columns, ShouldResemble, []string{"event_name", "has_powerstage"})
		})

		Convey("Then the submissions layout is fixed", func() {
			So(schema.Submissions.Table, ShouldEqual, "submissions")
			So(schema.Submissions.Columns, ShouldResemble, []string{
				"user_name", "submission_datetime", "event_name", "time", "video_link", "powerstage_time",
			})
		})

		Convey("When asking for a column index", func() {
			idx, ok := schema.Submissions.Index(schema.ColVideoLink)

			Convey("Then the position matches the column order", func() {
				So(ok, ShouldBeTrue)
				So(idx, ShouldEqual, 4)
			})
		})

		Convey("When asking for an unknown column", func() {
			_, ok := schema.Events.Index("nope")

			So(ok, ShouldBeFalse)
		})

		Convey("When mutating the slice returned by Header", func() {
			header := schema.Events.Header()
			header[0] = "clobbered"

			Convey("Then the descriptor is unaffected", func() {
				So(schema.Events.Columns[0], ShouldEqual, "event_name")
			})
		})
	})
}

func TestEventRows(t *testing.T) {
	Convey("Given an event definition", t, func() {
		event := schema.Event{Name: "rally monte", HasPowerstage: true}

		Convey("When rendering and re-parsing its row", func() {
			parsed, err := schema.EventFromRow(event.Row())

			Convey("Then the record survives the round trip", func() {
				So(err, ShouldBeNil)
				So(parsed, ShouldResemble, event)
			})
		})

		Convey("When parsing a row with the wrong arity", func() {
			_, err := schema.EventFromRow([]string{"rally monte"})

			So(err, ShouldNotBeNil)
		})

		Convey("When parsing a row with a garbage flag", func() {
			_, err := schema.EventFromRow([]string{"rally monte", "maybe"})

			So(err, ShouldNotBeNil)
		})

		Convey("When the sheet capitalizes the stored boolean", func() {
			parsed, err := schema.EventFromRow([]string{"rally monte", "TRUE"})

			Convey("Then parsing still succeeds", func() {
				So(err, ShouldBeNil)
				So(parsed.HasPowerstage, ShouldBeTrue)
			})
		})
	})
}

func TestSubmissionRows(t *testing.T) {
	Convey("Given a normalized submission", t, func() {
		sub := schema.Submission{
			UserName:           "petter",
			SubmissionDatetime: "2024-03-01T10:00:00.000000Z",
			EventName:          "rally monte",
			Time:               "0:02:10.000000",
			VideoLink:          "https://example.com/run",
			PowerstageTime:     "",
		}

		Convey("When rendering its row", func() {
			row := sub.Row()

			Convey("Then values follow the submissions column order", func() {
				So(row, ShouldResemble, []string{
					"petter", "2024-03-01T10:00:00.000000Z", "rally monte",
					"0:02:10.000000", "https://example.com/run", "",
				})
			})
		})

		Convey("When re-parsing the rendered row", func() {
			parsed, err := schema.SubmissionFromRow(sub.Row())

			So(err, ShouldBeNil)
			So(parsed, ShouldResemble, sub)
		})

		Convey("When parsing a short row", func() {
			_, err := schema.SubmissionFromRow([]string{"petter"})

			So(err, ShouldNotBeNil)
		})
	})
}
