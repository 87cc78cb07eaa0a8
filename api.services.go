package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LibraryServiceProvider exposes the library to the api handlers. Returned
// books and loans are snapshots, they never alias the library state.
type LibraryServiceProvider interface {
	AddAuthor(ctx context.Context, name string) Author
	GetAllAuthors(ctx context.Context) []Author
	AddBook(ctx context.Context, req CreateBookRequest) (Book, error)
	GetOneBook(ctx context.Context, id string) (Book, error)
	GetAllBooks(ctx context.Context) []Book
	RemoveBook(ctx context.Context, id string) (Book, error)
	SearchBooks(ctx context.Context, title, author string) []Book
	Checkout(ctx context.Context, id, holder string, at *time.Time) (OpenLoan, error)
	Return(ctx context.Context, id string, at *time.Time) (ReturnReceipt, error)
	GetOpenLoans(ctx context.Context) []OpenLoan
	GetHistory(ctx context.Context) []ClosedLoan
	Popularity(ctx context.Context) []BookCount
	ReturnRate(ctx context.Context) float64
	AverageReadingTime(ctx context.Context) []BookAverage
	Report(ctx context.Context) StatsReport
	ExportStatistics(ctx context.Context, exporter, destination string) error
	FetchExport(ctx context.Context, exporter, destination string) ([]byte, error)
	Seed(ctx context.Context, seed *SeedFile) (int, error)
}

// LibraryService serializes every access to the library with a mutex.
type LibraryService struct {
	logger    *zap.Logger
	config    *Config
	ids       UIDHandler
	exporters Exporters
	mu        sync.Mutex
	library   *Library
	authors   []*Author
}

func NewLibraryService(logger *zap.Logger, config *Config, ids UIDHandler, library *Library, exporters Exporters) LibraryServiceProvider {
	return &LibraryService{
		logger:    logger,
		config:    config,
		ids:       ids,
		exporters: exporters,
		library:   library,
		authors:   []*Author{},
	}
}

func (ls *LibraryService) AddAuthor(_ context.Context, name string) Author {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	author := ls.addAuthor(name)
	return *author
}

func (ls *LibraryService) addAuthor(name string) *Author {
	author := NewAuthor(ls.ids.Generate(AuthorIDPrefix), name)
	ls.authors = append(ls.authors, author)
	ls.logger.Info("service: author created", zap.String("author.id", author.ID), zap.String("author.name", name))
	return author
}

func (ls *LibraryService) GetAllAuthors(_ context.Context) []Author {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	authors := make([]Author, 0, len(ls.authors))
	for _, a := range ls.authors {
		authors = append(authors, *a)
	}
	return authors
}

func (ls *LibraryService) findAuthor(id string) (*Author, error) {
	for _, a := range ls.authors {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, ErrAuthorNotFound
}

// AddBook creates a book and adds it to the catalog. A new author is
// created when the request does not reference an existing one.
func (ls *LibraryService) AddBook(_ context.Context, req CreateBookRequest) (Book, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	var author *Author
	var err error
	if req.AuthorID != "" {
		if author, err = ls.findAuthor(req.AuthorID); err != nil {
			return Book{}, err
		}
	} else {
		author = ls.addAuthor(req.AuthorName)
	}
	book := NewBook(ls.ids.Generate(BookIDPrefix), req.Title, author, req.Pages)
	if err = ls.library.AddBook(book); err != nil {
		return Book{}, err
	}
	return *book, nil
}

func (ls *LibraryService) GetOneBook(_ context.Context, id string) (Book, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	book, err := ls.library.Catalog().Lookup(id)
	if err != nil {
		return Book{}, err
	}
	return *book, nil
}

func (ls *LibraryService) GetAllBooks(_ context.Context) []Book {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return snapshotBooks(ls.library.Catalog().Books())
}

func (ls *LibraryService) RemoveBook(_ context.Context, id string) (Book, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	book, err := ls.library.Catalog().Lookup(id)
	if err != nil {
		return Book{}, err
	}
	if err = ls.library.RemoveBook(book); err != nil {
		return Book{}, err
	}
	return *book, nil
}

// SearchBooks searches by title when provided, otherwise by author.
func (ls *LibraryService) SearchBooks(_ context.Context, title, author string) []Book {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if title != "" {
		return snapshotBooks(ls.library.FindBooksByTitle(title))
	}
	return snapshotBooks(ls.library.FindBooksByAuthor(author))
}

func (ls *LibraryService) Checkout(_ context.Context, id, holder string, at *time.Time) (OpenLoan, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	book, err := ls.library.Catalog().Lookup(id)
	if err != nil {
		return OpenLoan{}, err
	}
	var loan OpenLoan
	if at == nil {
		loan, err = ls.library.CheckoutNow(book, holder)
	} else {
		loan, err = ls.library.Checkout(book, holder, *at)
	}
	if err != nil {
		return OpenLoan{}, err
	}
	loan.Book = snapshotBook(loan.Book)
	return loan, nil
}

func (ls *LibraryService) Return(_ context.Context, id string, at *time.Time) (ReturnReceipt, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	book, err := ls.library.Catalog().Lookup(id)
	if err != nil {
		return ReturnReceipt{}, err
	}
	var receipt ReturnReceipt
	if at == nil {
		receipt, err = ls.library.ReturnNow(book)
	} else {
		receipt, err = ls.library.Return(book, *at)
	}
	if err != nil {
		return ReturnReceipt{}, err
	}
	receipt.Loan.Book = snapshotBook(receipt.Loan.Book)
	return receipt, nil
}

func (ls *LibraryService) GetOpenLoans(_ context.Context) []OpenLoan {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	loans := ls.library.Ledger().OpenLoans()
	for i := range loans {
		loans[i].Book = snapshotBook(loans[i].Book)
	}
	return loans
}

func (ls *LibraryService) GetHistory(_ context.Context) []ClosedLoan {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	history := ls.library.Ledger().History()
	for i := range history {
		history[i].Book = snapshotBook(history[i].Book)
	}
	return history
}

func (ls *LibraryService) Popularity(_ context.Context) []BookCount {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	counts := ls.library.Popularity()
	for i := range counts {
		counts[i].Book = snapshotBook(counts[i].Book)
	}
	return counts
}

func (ls *LibraryService) ReturnRate(_ context.Context) float64 {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.library.ReturnRate()
}

func (ls *LibraryService) AverageReadingTime(_ context.Context) []BookAverage {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	averages := ls.library.AverageReadingTime()
	for i := range averages {
		averages[i].Book = snapshotBook(averages[i].Book)
	}
	return averages
}

func (ls *LibraryService) Report(_ context.Context) StatsReport {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.library.Report()
}

func (ls *LibraryService) ExportStatistics(ctx context.Context, exporter, destination string) error {
	exp, err := ls.exporters.Get(exporter)
	if err != nil {
		return err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.library.ExportStatistics(ctx, exp, destination)
}

// FetchExport reads back a statistics document stored by the exporter.
// It does not touch the library so it runs without the lock.
func (ls *LibraryService) FetchExport(ctx context.Context, exporter, destination string) ([]byte, error) {
	fetcher, err := ls.exporters.GetFetcher(exporter)
	if err != nil {
		return nil, err
	}
	doc, err := fetcher.Fetch(ctx, destination)
	if err != nil {
		return nil, err
	}
	ls.logger.Info("service: exported statistics fetched", zap.String("export.exporter", exporter), zap.String("export.destination", destination))
	return doc, nil
}

// Seed loads the authors and books of the seed into the library.
func (ls *LibraryService) Seed(_ context.Context, seed *SeedFile) (int, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	authors, added, err := SeedLibrary(ls.library, ls.ids, seed)
	ls.authors = append(ls.authors, authors...)
	if err != nil {
		ls.logger.Error("service: catalog seeding failed", zap.Int("seed.books", added), zap.Error(err))
		return added, err
	}
	ls.logger.Info("service: catalog seeded", zap.Int("seed.authors", len(authors)), zap.Int("seed.books", added))
	return added, nil
}

func snapshotBook(b *Book) *Book {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}

func snapshotBooks(books []*Book) []Book {
	snapshot := make([]Book, 0, len(books))
	for _, b := range books {
		snapshot = append(snapshot, *b)
	}
	return snapshot
}
