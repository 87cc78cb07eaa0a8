package main

import (
	"time"
)

const day = 24 * time.Hour

// OpenLoan is a checkout without recorded return yet.
type OpenLoan struct {
	Book         *Book     `json:"book"`
	Holder       string    `json:"holder"`
	CheckedOutAt time.Time `json:"checkedOutAt"`
}

// ClosedLoan is a completed checkout-then-return cycle.
type ClosedLoan struct {
	Book         *Book     `json:"book"`
	Holder       string    `json:"holder"`
	CheckedOutAt time.Time `json:"checkedOutAt"`
	ReturnedAt   time.Time `json:"returnedAt"`
}

// Days returns the loan duration in whole days.
func (cl ClosedLoan) Days() int {
	return DaysBetween(cl.CheckedOutAt, cl.ReturnedAt)
}

// ReturnReceipt describes the outcome of a successful return. Lateness
// is advisory and has no effect on later checkouts.
type ReturnReceipt struct {
	Loan     ClosedLoan `json:"loan"`
	Days     int        `json:"days"`
	OnTime   bool       `json:"onTime"`
	LateDays int        `json:"lateDays"`
}

// DaysBetween returns the number of whole days from start to end. The
// result is floored, so a negative partial day counts as a full one.
// When both ends share a location the days are counted on wall-clock
// time, so a loan crossing a daylight saving change keeps its calendar
// length. Otherwise the elapsed time is used.
func DaysBetween(start, end time.Time) int {
	if start.Location() == end.Location() {
		start, end = wallClock(start), wallClock(end)
	}
	d := end.Sub(start)
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// wallClock returns the instant reading the same date and time in UTC.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Ledger tracks open loans, the append-only history of closed loans and the
// reading durations per book. It owns the checked out flag of each book.
type Ledger struct {
	open      map[*Book]OpenLoan
	openOrder []*Book
	history   []ClosedLoan
	readTimes map[*Book][]int
	readOrder []*Book
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		open:      make(map[*Book]OpenLoan),
		history:   []ClosedLoan{},
		readTimes: make(map[*Book][]int),
	}
}

// Open records a new open loan and marks the book as checked out.
func (l *Ledger) Open(book *Book, holder string, at time.Time) (OpenLoan, error) {
	if _, found := l.open[book]; found || book.CheckedOut {
		return OpenLoan{}, ErrBookAlreadyCheckedOut
	}
	loan := OpenLoan{Book: book, Holder: holder, CheckedOutAt: at}
	book.CheckedOut = true
	l.open[book] = loan
	l.openOrder = append(l.openOrder, book)
	return loan, nil
}

// Close pops the open loan of the book, appends it to history and
// records its duration into the reading-time index.
func (l *Ledger) Close(book *Book, at time.Time) (ClosedLoan, error) {
	loan, found := l.open[book]
	if !found || !book.CheckedOut {
		return ClosedLoan{}, ErrBookNotCheckedOut
	}
	l.forget(book)
	book.CheckedOut = false

	closed := ClosedLoan{
		Book:         book,
		Holder:       loan.Holder,
		CheckedOutAt: loan.CheckedOutAt,
		ReturnedAt:   at,
	}
	l.history = append(l.history, closed)

	if _, seen := l.readTimes[book]; !seen {
		l.readOrder = append(l.readOrder, book)
	}
	l.readTimes[book] = append(l.readTimes[book], closed.Days())
	return closed, nil
}

// Drop discards the open loan of the book if any. History is kept.
func (l *Ledger) Drop(book *Book) bool {
	if _, found := l.open[book]; !found {
		return false
	}
	l.forget(book)
	book.CheckedOut = false
	return true
}

func (l *Ledger) forget(book *Book) {
	delete(l.open, book)
	for i, b := range l.openOrder {
		if b == book {
			l.openOrder = append(l.openOrder[:i], l.openOrder[i+1:]...)
			break
		}
	}
}

// IsOpen reports whether the book currently has an open loan.
func (l *Ledger) IsOpen(book *Book) bool {
	_, found := l.open[book]
	return found
}

// OpenLoan returns the open loan of the book.
func (l *Ledger) OpenLoan(book *Book) (OpenLoan, bool) {
	loan, found := l.open[book]
	return loan, found
}

// OpenLoans returns open loans in checkout order.
func (l *Ledger) OpenLoans() []OpenLoan {
	loans := make([]OpenLoan, 0, len(l.openOrder))
	for _, b := range l.openOrder {
		loans = append(loans, l.open[b])
	}
	return loans
}

// OpenCount returns the number of open loans.
func (l *Ledger) OpenCount() int {
	return len(l.open)
}

// History returns a copy of closed loans in return order.
func (l *Ledger) History() []ClosedLoan {
	history := make([]ClosedLoan, len(l.history))
	copy(history, l.history)
	return history
}

// ReadingTimes returns the recorded durations of the book.
func (l *Ledger) ReadingTimes(book *Book) []int {
	times := make([]int, len(l.readTimes[book]))
	copy(times, l.readTimes[book])
	return times
}
