package main

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// BookCount is the number of closed loans of a book.
type BookCount struct {
	Book  *Book `json:"book"`
	Count int   `json:"count"`
}

// BookAverage is the mean reading time of a book in days.
type BookAverage struct {
	Book *Book   `json:"book"`
	Days float64 `json:"days"`
}

// TitleCount is a popularity entry of the exported document.
type TitleCount struct {
	Title string
	Count int
}

// TitleDays is an average reading time entry of the exported document.
type TitleDays struct {
	Title string
	Days  float64
}

// PopularityByTitle encodes as a JSON object with keys in entries order.
type PopularityByTitle []TitleCount

// ReadingTimeByTitle encodes as a JSON object with keys in entries order.
type ReadingTimeByTitle []TitleDays

// Decimal is a float always encoded with a fractional part, so 100 is
// written as 100.0.
type Decimal float64

// StatsReport is the exported statistics document. Entries are keyed by
// title: on collision the last value wins and the key keeps the position
// of its first insertion.
type StatsReport struct {
	Popularity         PopularityByTitle  `json:"popularity"`
	ReturnRatePercent  Decimal            `json:"return_rate_percent"`
	AverageReadingTime ReadingTimeByTitle `json:"average_reading_time_days"`
}

func (p PopularityByTitle) set(title string, count int) PopularityByTitle {
	for i := range p {
		if p[i].Title == title {
			p[i].Count = count
			return p
		}
	}
	return append(p, TitleCount{Title: title, Count: count})
}

func (rt ReadingTimeByTitle) set(title string, days float64) ReadingTimeByTitle {
	for i := range rt {
		if rt[i].Title == title {
			rt[i].Days = days
			return rt
		}
	}
	return append(rt, TitleDays{Title: title, Days: days})
}

func (p PopularityByTitle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONKey(&buf, e.Title); err != nil {
			return nil, err
		}
		buf.WriteString(strconv.Itoa(e.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (rt ReadingTimeByTitle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range rt {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONKey(&buf, e.Title); err != nil {
			return nil, err
		}
		buf.WriteString(formatDecimal(e.Days))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(formatDecimal(float64(d))), nil
}

func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// writeJSONKey writes the quoted key and its colon, leaving html characters as is.
func writeJSONKey(buf *bytes.Buffer, key string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return err
	}
	// replace the newline added by Encode.
	buf.Truncate(buf.Len() - 1)
	buf.WriteByte(':')
	return nil
}

// StatsEngine derives statistics from a ledger. It never mutates it
// and every call recomputes its result.
type StatsEngine struct {
	ledger *Ledger
}

// NewStatsEngine returns a stats engine reading from the given ledger.
func NewStatsEngine(ledger *Ledger) *StatsEngine {
	return &StatsEngine{ledger: ledger}
}

// Popularity counts closed loans per book in first-seen order of history.
func (se *StatsEngine) Popularity() []BookCount {
	counts := []BookCount{}
	index := make(map[*Book]int)
	for _, loan := range se.ledger.history {
		i, seen := index[loan.Book]
		if !seen {
			index[loan.Book] = len(counts)
			counts = append(counts, BookCount{Book: loan.Book, Count: 1})
			continue
		}
		counts[i].Count++
	}
	return counts
}

// ReturnRate returns the percentage of checkouts already returned.
// It is zero when nothing was ever checked out.
func (se *StatsEngine) ReturnRate() float64 {
	returned := len(se.ledger.history)
	total := returned + se.ledger.OpenCount()
	if total == 0 {
		return 0.0
	}
	return float64(returned) / float64(total) * 100
}

// AverageReadingTime returns the mean duration of each book with at
// least one closed loan, in first-return order.
func (se *StatsEngine) AverageReadingTime() []BookAverage {
	averages := make([]BookAverage, 0, len(se.ledger.readOrder))
	for _, b := range se.ledger.readOrder {
		times := se.ledger.readTimes[b]
		if len(times) == 0 {
			continue
		}
		sum := 0
		for _, t := range times {
			sum += t
		}
		averages = append(averages, BookAverage{Book: b, Days: float64(sum) / float64(len(times))})
	}
	return averages
}

// Report builds the title-keyed statistics document.
func (se *StatsEngine) Report() StatsReport {
	report := StatsReport{
		Popularity:         PopularityByTitle{},
		ReturnRatePercent:  Decimal(se.ReturnRate()),
		AverageReadingTime: ReadingTimeByTitle{},
	}
	for _, bc := range se.Popularity() {
		report.Popularity = report.Popularity.set(bc.Book.Title, bc.Count)
	}
	for _, ba := range se.AverageReadingTime() {
		report.AverageReadingTime = report.AverageReadingTime.set(ba.Book.Title, ba.Days)
	}
	return report
}

// EncodeReport renders the report as human-readable UTF-8 JSON indented
// by four spaces, without trailing newline.
func EncodeReport(report StatsReport) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(report); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
