package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLibraryService(clock Clocker, exporters Exporters) *LibraryService {
	lib := NewLibrary(zap.NewNop(), clock, DefaultLoanPeriodDays)
	return NewLibraryService(zap.NewNop(), &Config{}, NewMockUIDHandler("", true), lib, exporters).(*LibraryService)
}

func TestLibraryService_AddBook(t *testing.T) {
	ls := newTestLibraryService(NewMockClocker(), Exporters{})
	ctx := context.Background()

	author := ls.AddAuthor(ctx, "Леся Українка")
	assert.Equal(t, "a:1", author.ID)

	book, err := ls.AddBook(ctx, CreateBookRequest{Title: "Лісова пісня", AuthorID: author.ID, Pages: 150})
	require.NoError(t, err)
	assert.Equal(t, "b:2", book.ID)
	assert.Equal(t, "Леся Українка", book.AuthorName())

	book, err = ls.AddBook(ctx, CreateBookRequest{Title: "Каменярі", AuthorName: "Іван Франко", Pages: 200})
	require.NoError(t, err)
	assert.Equal(t, "a:3", book.Author.ID)
	assert.Len(t, ls.GetAllAuthors(ctx), 2)

	_, err = ls.AddBook(ctx, CreateBookRequest{Title: "x", AuthorID: "a:404"})
	assert.ErrorIs(t, err, ErrAuthorNotFound)
	assert.Len(t, ls.GetAllBooks(ctx), 2)
}

func TestLibraryService_Lending(t *testing.T) {
	clock := NewMockClocker()
	ls := newTestLibraryService(clock, Exporters{})
	ctx := context.Background()
	book, err := ls.AddBook(ctx, CreateBookRequest{Title: "Каменярі", AuthorName: "Іван Франко"})
	require.NoError(t, err)

	at := date(time.May, 16)
	loan, err := ls.Checkout(ctx, book.ID, "Марія", &at)
	require.NoError(t, err)
	assert.True(t, loan.Book.CheckedOut)
	assert.Equal(t, at, loan.CheckedOutAt)

	_, err = ls.Checkout(ctx, book.ID, "Олександр", nil)
	assert.ErrorIs(t, err, ErrBookAlreadyCheckedOut)
	assert.Len(t, ls.GetOpenLoans(ctx), 1)

	back := date(time.June, 5)
	receipt, err := ls.Return(ctx, book.ID, &back)
	require.NoError(t, err)
	assert.False(t, receipt.OnTime)
	assert.Equal(t, 6, receipt.LateDays)
	assert.Empty(t, ls.GetOpenLoans(ctx))
	assert.Len(t, ls.GetHistory(ctx), 1)

	_, err = ls.Return(ctx, book.ID, nil)
	assert.ErrorIs(t, err, ErrBookNotCheckedOut)
	_, err = ls.Checkout(ctx, "b:404", "Марія", nil)
	assert.ErrorIs(t, err, ErrBookNotInCatalog)

	// checkout without date uses the clock
	loan, err = ls.Checkout(ctx, book.ID, "Олександр", nil)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), loan.CheckedOutAt)

	assert.Equal(t, 50.0, ls.ReturnRate(ctx))
	report := ls.Report(ctx)
	assert.Equal(t, PopularityByTitle{{"Каменярі", 1}}, report.Popularity)
	assert.Equal(t, ReadingTimeByTitle{{"Каменярі", 20}}, report.AverageReadingTime)
	assert.Equal(t, Decimal(50), report.ReturnRatePercent)
}

func TestLibraryService_SnapshotsDoNotAlias(t *testing.T) {
	ls := newTestLibraryService(NewMockClocker(), Exporters{})
	ctx := context.Background()
	book, err := ls.AddBook(ctx, CreateBookRequest{Title: "Каменярі", AuthorName: "Іван Франко"})
	require.NoError(t, err)
	loan, err := ls.Checkout(ctx, book.ID, "Марія", nil)
	require.NoError(t, err)

	loan.Book.CheckedOut = false
	book.Title = "changed"
	stored, err := ls.GetOneBook(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, stored.CheckedOut)
	assert.Equal(t, "Каменярі", stored.Title)
}

func TestLibraryService_RemoveAndSearch(t *testing.T) {
	ls := newTestLibraryService(NewMockClocker(), Exporters{})
	ctx := context.Background()
	b1, err := ls.AddBook(ctx, CreateBookRequest{Title: "Лісова пісня", AuthorName: "Леся Українка"})
	require.NoError(t, err)
	_, err = ls.AddBook(ctx, CreateBookRequest{Title: "Contra spem spero", AuthorID: b1.Author.ID})
	require.NoError(t, err)

	assert.Len(t, ls.SearchBooks(ctx, "", "леся"), 2)
	assert.Len(t, ls.SearchBooks(ctx, "ЛІСОВА", ""), 1)

	_, err = ls.Checkout(ctx, b1.ID, "Олександр", nil)
	require.NoError(t, err)
	removed, err := ls.RemoveBook(ctx, b1.ID)
	require.NoError(t, err)
	assert.False(t, removed.CheckedOut)
	assert.Empty(t, ls.GetOpenLoans(ctx))

	_, err = ls.RemoveBook(ctx, b1.ID)
	assert.ErrorIs(t, err, ErrBookNotInCatalog)
	_, err = ls.GetOneBook(ctx, b1.ID)
	assert.ErrorIs(t, err, ErrBookNotInCatalog)
}

func TestLibraryService_ExportStatistics(t *testing.T) {
	exp := NewMockExporter()
	ls := newTestLibraryService(NewMockClocker(), Exporters{"mock": exp})
	ctx := context.Background()

	require.NoError(t, ls.ExportStatistics(ctx, "mock", "stats"))
	assert.Contains(t, string(exp.Docs["stats"]), `"return_rate_percent": 0.0`)

	assert.ErrorIs(t, ls.ExportStatistics(ctx, "ftp", "stats"), ErrUnknownExporter)
}
