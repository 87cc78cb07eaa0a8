package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// demoDate builds a midnight date in UTC.
func demoDate(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// RunDemo walks through a small library session: it seeds three books,
// searches the catalog, lends and returns two of them (one late), prints
// the statistics document to out and exports it to destination.
func RunDemo(ctx context.Context, logger *zap.Logger, clock Clocker, out io.Writer, destination string) error {
	ids := NewIDsHandler()
	lib := NewLibrary(logger, clock, DefaultLoanPeriodDays)

	lesya := NewAuthor(ids.Generate(AuthorIDPrefix), "Леся Українка")
	ivan := NewAuthor(ids.Generate(AuthorIDPrefix), "Іван Франко")
	forestSong := NewBook(ids.Generate(BookIDPrefix), "Лісова пісня", lesya, 150)
	stonecutters := NewBook(ids.Generate(BookIDPrefix), "Каменярі", ivan, 200)
	contraSpem := NewBook(ids.Generate(BookIDPrefix), "Contra spem spero", lesya, 100)

	for _, b := range []*Book{forestSong, stonecutters, contraSpem} {
		if err := lib.AddBook(b); err != nil {
			return err
		}
	}

	lib.FindBooksByTitle("лісова")
	lib.FindBooksByAuthor("Франко")

	if _, err := lib.Checkout(forestSong, "Олександр", demoDate(2025, time.May, 10)); err != nil {
		return err
	}
	if _, err := lib.Checkout(stonecutters, "Марія", demoDate(2025, time.May, 16)); err != nil {
		return err
	}

	if _, err := lib.Return(forestSong, demoDate(2025, time.May, 20)); err != nil {
		return err
	}
	if _, err := lib.Return(stonecutters, demoDate(2025, time.June, 5)); err != nil {
		return err
	}

	doc, err := EncodeReport(lib.Report())
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintf(out, "%s\n", doc); err != nil {
		return err
	}
	return lib.ExportStatistics(ctx, NewFileExporter(logger, ""), destination)
}
