package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultLoanPeriodDays is the number of days a book can be kept before
// its return is reported as late.
const DefaultLoanPeriodDays = 14

// Library is the owned aggregate of a catalog and its lending ledger.
// It is not safe for concurrent use, callers must serialize access.
type Library struct {
	logger     *zap.Logger
	clock      Clocker
	loanPeriod int
	catalog    *Catalog
	ledger     *Ledger
	stats      *StatsEngine
}

// NewLibrary provides an empty library. A non-positive loan period
// falls back to DefaultLoanPeriodDays.
func NewLibrary(logger *zap.Logger, clock Clocker, loanPeriodDays int) *Library {
	if loanPeriodDays <= 0 {
		loanPeriodDays = DefaultLoanPeriodDays
	}
	ledger := NewLedger()
	return &Library{
		logger:     logger,
		clock:      clock,
		loanPeriod: loanPeriodDays,
		catalog:    NewCatalog(),
		ledger:     ledger,
		stats:      NewStatsEngine(ledger),
	}
}

// Catalog gives read access to the catalog.
func (lib *Library) Catalog() *Catalog {
	return lib.catalog
}

// Ledger gives read access to the lending ledger.
func (lib *Library) Ledger() *Ledger {
	return lib.ledger
}

// LoanPeriod returns the allowed loan duration in days.
func (lib *Library) LoanPeriod() int {
	return lib.loanPeriod
}

// AddBook adds the book to the catalog. Adding the same book twice
// is reported with ErrBookAlreadyInCatalog and changes nothing.
func (lib *Library) AddBook(book *Book) error {
	if err := lib.catalog.Add(book); err != nil {
		lib.logger.Warn("library: book already in catalog", bookFields(book)...)
		return err
	}
	lib.logger.Info("library: book added", bookFields(book)...)
	return nil
}

// RemoveBook detaches the book from the catalog and drops its open loan.
// Closed loans of the book stay in history.
func (lib *Library) RemoveBook(book *Book) error {
	if err := lib.catalog.Remove(book); err != nil {
		lib.logger.Warn("library: book to remove not found", bookFields(book)...)
		return err
	}
	dropped := lib.ledger.Drop(book)
	lib.logger.Info("library: book removed", append(bookFields(book), zap.Bool("loan.dropped", dropped))...)
	return nil
}

// FindBooksByTitle searches the catalog by title substring.
func (lib *Library) FindBooksByTitle(text string) []*Book {
	found := lib.catalog.FindByTitle(text)
	lib.logger.Info("library: search by title",
		zap.String("search.text", text),
		zap.Int("search.count", len(found)),
		zap.Strings("search.titles", titles(found)),
	)
	return found
}

// FindBooksByAuthor searches the catalog by author name substring.
func (lib *Library) FindBooksByAuthor(text string) []*Book {
	found := lib.catalog.FindByAuthor(text)
	lib.logger.Info("library: search by author",
		zap.String("search.text", text),
		zap.Int("search.count", len(found)),
		zap.Strings("search.titles", titles(found)),
	)
	return found
}

// Checkout lends the book to holder at the given date.
func (lib *Library) Checkout(book *Book, holder string, at time.Time) (OpenLoan, error) {
	if !lib.catalog.Contains(book) {
		lib.logger.Warn("library: checkout of book not in catalog", bookFields(book)...)
		return OpenLoan{}, ErrBookNotInCatalog
	}
	loan, err := lib.ledger.Open(book, holder, at)
	if err != nil {
		lib.logger.Warn("library: book already checked out", bookFields(book)...)
		return loan, err
	}
	lib.logger.Info("library: book checked out",
		append(bookFields(book),
			zap.String("loan.holder", holder),
			zap.String("loan.date", at.Format(time.DateOnly)),
		)...,
	)
	return loan, nil
}

// CheckoutNow lends the book to holder at the current clock time.
func (lib *Library) CheckoutNow(book *Book, holder string) (OpenLoan, error) {
	return lib.Checkout(book, holder, lib.clock.Now())
}

// Return closes the open loan of the book at the given date and reports
// whether it came back within the loan period.
func (lib *Library) Return(book *Book, at time.Time) (ReturnReceipt, error) {
	if !lib.catalog.Contains(book) {
		lib.logger.Warn("library: return of book not in catalog", bookFields(book)...)
		return ReturnReceipt{}, ErrBookNotInCatalog
	}
	loan, err := lib.ledger.Close(book, at)
	if err != nil {
		lib.logger.Warn("library: book was not checked out", bookFields(book)...)
		return ReturnReceipt{}, err
	}

	receipt := ReturnReceipt{Loan: loan, Days: loan.Days(), OnTime: true}
	if receipt.Days > lib.loanPeriod {
		receipt.OnTime = false
		receipt.LateDays = receipt.Days - lib.loanPeriod
		lib.logger.Info("library: book returned late",
			append(bookFields(book),
				zap.String("loan.holder", loan.Holder),
				zap.Int("loan.days", receipt.Days),
				zap.Int("loan.late", receipt.LateDays),
			)...,
		)
		return receipt, nil
	}
	lib.logger.Info("library: book returned on time",
		append(bookFields(book),
			zap.String("loan.holder", loan.Holder),
			zap.Int("loan.days", receipt.Days),
		)...,
	)
	return receipt, nil
}

// ReturnNow closes the open loan of the book at the current clock time.
func (lib *Library) ReturnNow(book *Book) (ReturnReceipt, error) {
	return lib.Return(book, lib.clock.Now())
}

// Popularity returns the number of closed loans per book.
func (lib *Library) Popularity() []BookCount {
	counts := lib.stats.Popularity()
	byTitle := make(map[string]int, len(counts))
	for _, bc := range counts {
		byTitle[bc.Book.Title] = bc.Count
	}
	lib.logger.Info("library: books popularity", zap.Any("popularity", byTitle))
	return counts
}

// ReturnRate returns the percentage of checkouts already returned.
func (lib *Library) ReturnRate() float64 {
	rate := lib.stats.ReturnRate()
	lib.logger.Info("library: return rate", zap.String("return.rate", fmt.Sprintf("%.2f%%", rate)))
	return rate
}

// AverageReadingTime returns the mean loan duration per returned book.
func (lib *Library) AverageReadingTime() []BookAverage {
	averages := lib.stats.AverageReadingTime()
	byTitle := make(map[string]string, len(averages))
	for _, ba := range averages {
		byTitle[ba.Book.Title] = fmt.Sprintf("%.2f", ba.Days)
	}
	lib.logger.Info("library: average reading time", zap.Any("reading.days", byTitle))
	return averages
}

// Report builds the statistics document.
func (lib *Library) Report() StatsReport {
	return lib.stats.Report()
}

// ExportStatistics serializes the statistics and hands them to the exporter.
func (lib *Library) ExportStatistics(ctx context.Context, exporter Exporter, destination string) error {
	doc, err := EncodeReport(lib.Report())
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}
	if err = exporter.Export(ctx, destination, doc); err != nil {
		lib.logger.Error("library: statistics export failed", zap.String("export.destination", destination), zap.Error(err))
		return err
	}
	lib.logger.Info("library: statistics exported", zap.String("export.destination", destination))
	return nil
}

func bookFields(book *Book) []zap.Field {
	return []zap.Field{
		zap.String("book.id", book.ID),
		zap.String("book.title", book.Title),
	}
}

func titles(books []*Book) []string {
	t := make([]string, 0, len(books))
	for _, b := range books {
		t = append(t, b.Title)
	}
	return t
}
