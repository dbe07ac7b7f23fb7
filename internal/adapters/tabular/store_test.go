package tabular_test

import (
	"context"
	"io"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/xlsrln/cat-bot/internal/adapters/sheet"
	"github.com/xlsrln/cat-bot/internal/adapters/tabular"
	"github.com/xlsrln/cat-bot/pkg/logger"
	"github.com/xlsrln/cat-bot/pkg/metrics"
)

func TestMain(m *testing.M) {
	if err := logger.Init(io.Discard); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newStore() (*tabular.Store, *sheet.MemoryDocument) {
	doc := sheet.NewMemoryDocument(sheet.WithURL("mem://doc"))
	return tabular.New(doc, tabular.WithMetrics(metrics.New())), doc
}

func TestEnsureTable(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store over an empty document", t, func() {
		store, doc := newStore()

		Convey("When ensuring a new table", func() {
			table, err := store.EnsureTable(ctx, "events", []string{"event_name", "has_powerstage"})

			Convey("Then the table exists with the requested header", func() {
				So(err, ShouldBeNil)
				So(table.Name(), ShouldEqual, "events")
				header, err := table.Header(ctx)
				So(err, ShouldBeNil)
				So(header, ShouldResemble, []string{"event_name", "has_powerstage"})
				So(doc.Titles(), ShouldResemble, []string{"events"})
			})
		})

		Convey("When ensuring a table that already exists", func() {
			_, err := store.EnsureTable(ctx, "events", []string{"event_name", "has_powerstage"})
			So(err, ShouldBeNil)

			table, err := store.EnsureTable(ctx, "events", []string{"some", "other", "layout"})

			Convey("Then the stored header stays authoritative", func() {
				So(err, ShouldBeNil)
				header, err := table.Header(ctx)
				So(err, ShouldBeNil)
				So(header, ShouldResemble, []string{"event_name", "has_powerstage"})
			})

			Convey("Then no second worksheet was created", func() {
				So(doc.Titles(), ShouldHaveLength, 1)
			})
		})

		Convey("Then the store reports the document address", func() {
			So(store.URL(), ShouldEqual, "mem://doc")
		})
	})
}

func TestTableReads(t *testing.T) {
	ctx := context.Background()

	Convey("Given a table with data rows", t, func() {
		store, _ := newStore()
		table, err := store.EnsureTable(ctx, "events", []string{"event_name", "has_powerstage"})
		So(err, ShouldBeNil)
		So(table.AppendRow(ctx, []string{"rally monte", "true"}), ShouldBeNil)
		So(table.AppendRow(ctx, []string{"hill climb", "false"}), ShouldBeNil)

		Convey("When reading a column", func() {
			values, err := table.ColumnValues(ctx, "event_name")

			Convey("Then values come back in row order without the header", func() {
				So(err, ShouldBeNil)
				So(values, ShouldResemble, []string{"rally monte", "hill climb"})
			})
		})

		Convey("When reading an absent column", func() {
			_, err := table.ColumnValues(ctx, "nope")

			So(err, ShouldWrap, tabular.ErrColumnNotFound)
		})

		Convey("When reading all rows", func() {
			rows, err := table.AllRows(ctx)

			Convey("Then the header is excluded", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldResemble, [][]string{
					{"rally monte", "true"},
					{"hill climb", "false"},
				})
			})
		})

		Convey("When finding a row by value", func() {
			row, err := table.FindRow(ctx, "event_name", "hill climb")

			So(err, ShouldBeNil)
			So(row, ShouldResemble, []string{"hill climb", "false"})
		})

		Convey("When finding a row with two matches", func() {
			So(table.AppendRow(ctx, []string{"hill climb", "true"}), ShouldBeNil)
			row, err := table.FindRow(ctx, "event_name", "hill climb")

			Convey("Then the first stored match wins", func() {
				So(err, ShouldBeNil)
				So(row, ShouldResemble, []string{"hill climb", "false"})
			})
		})

		Convey("When no row matches", func() {
			_, err := table.FindRow(ctx, "event_name", "nope")

			So(err, ShouldWrap, tabular.ErrRowNotFound)
		})

		Convey("When matching on an absent column", func() {
			_, err := table.FindRow(ctx, "nope", "x")

			So(err, ShouldWrap, tabular.ErrColumnNotFound)
		})
	})
}

func TestAppendRow(t *testing.T) {
	ctx := context.Background()

	Convey("Given a two-column table", t, func() {
		store, _ := newStore()
		table, err := store.EnsureTable(ctx, "events", []string{"event_name", "has_powerstage"})
		So(err, ShouldBeNil)

		Convey("When appending a row of matching arity", func() {
			err := table.AppendRow(ctx, []string{"rally monte", "true"})

			Convey("Then the row count grows by exactly one", func() {
				So(err, ShouldBeNil)
				rows, err := table.AllRows(ctx)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 1)
			})
		})

		Convey("When appending a short row", func() {
			err := table.AppendRow(ctx, []string{"rally monte"})

			Convey("Then it fails without padding", func() {
				So(err, ShouldWrap, tabular.ErrArityMismatch)
				rows, readErr := table.AllRows(ctx)
				So(readErr, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})

		Convey("When appending a long row", func() {
			err := table.AppendRow(ctx, []string{"rally monte", "true", "extra"})

			Convey("Then it fails without truncation", func() {
				So(err, ShouldWrap, tabular.ErrArityMismatch)
				rows, readErr := table.AllRows(ctx)
				So(readErr, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})
	})
}

func TestTrailingEmptyCells(t *testing.T) {
	ctx := context.Background()

	Convey("Given a backing service that trims trailing empty cells", t, func() {
		doc := sheet.NewMemoryDocument()
		store := tabular.New(doc)
		ws, err := doc.CreateWorksheet(ctx, "submissions", []string{"user_name", "time", "powerstage_time"})
		So(err, ShouldBeNil)
		// A row as the remote API would return it: the empty last cell gone.
		So(ws.Append(ctx, []string{"petter", "0:02:10.000000"}), ShouldBeNil)
		table, err := store.EnsureTable(ctx, "submissions", []string{"user_name", "time", "powerstage_time"})
		So(err, ShouldBeNil)

		Convey("When reading all rows", func() {
			rows, err := table.AllRows(ctx)

			Convey("Then rows are padded back to header arity", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldResemble, [][]string{{"petter", "0:02:10.000000", ""}})
			})
		})

		Convey("When reading the trimmed column", func() {
			values, err := table.ColumnValues(ctx, "powerstage_time")

			So(err, ShouldBeNil)
			So(values, ShouldResemble, []string{""})
		})

		Convey("When finding by the trimmed column's empty value", func() {
			row, err := table.FindRow(ctx, "powerstage_time", "")

			So(err, ShouldBeNil)
			So(row, ShouldResemble, []string{"petter", "0:02:10.000000", ""})
		})
	})
}
