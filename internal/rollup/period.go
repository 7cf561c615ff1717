package rollup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonth is returned when the target month cannot be resolved
var ErrInvalidMonth = errors.New("invalid target month")

const dateLayout = "2006-01-02"

// PeriodLabel names a comparison window
type PeriodLabel string

const (
	PeriodThis PeriodLabel = "this"
	PeriodPrev PeriodLabel = "prev"
	PeriodYoY  PeriodLabel = "yoy"
	PeriodD30  PeriodLabel = "d30"
	PeriodD90  PeriodLabel = "d90"
)

// YearMonth is a calendar month
type YearMonth struct {
	Year  int
	Month time.Month
}

// NewYearMonth validates and builds a YearMonth
func NewYearMonth(year, month int) (YearMonth, error) {
	if year < 1 || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: %04d-%02d", ErrInvalidMonth, year, month)
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}

// ParseYearMonth parses "YYYY-MM"
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// YearMonthOf returns the calendar month containing t
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// AddMonths shifts by n calendar months, wrapping years
func (ym YearMonth) AddMonths(n int) YearMonth {
	idx := ym.Year*12 + int(ym.Month) - 1 + n
	return YearMonth{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// Before reports whether ym is earlier than other
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// FirstDay returns the first day of the month at midnight in loc
func (ym YearMonth) FirstDay(loc *time.Location) time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, loc)
}

// LastDay returns the last day of the month at midnight in loc
func (ym YearMonth) LastDay(loc *time.Location) time.Time {
	return ym.AddMonths(1).FirstDay(loc).AddDate(0, 0, -1)
}

// Period returns the whole month as a labelled period
func (ym YearMonth) Period(label PeriodLabel, loc *time.Location) Period {
	return Period{From: ym.FirstDay(loc), To: ym.LastDay(loc), Label: label}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Period is an inclusive date range
type Period struct {
	From  time.Time
	To    time.Time
	Label PeriodLabel
}

// Contains reports whether the calendar date of t falls within the period.
// The date is read as written in t's own location.
func (p Period) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.From.Location())
	return !day.Before(p.From) && !day.After(p.To)
}

type periodJSON struct {
	From  string      `json:"from"`
	To    string      `json:"to"`
	Label PeriodLabel `json:"label,omitempty"`
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(periodJSON{From: p.From.Format(dateLayout), To: p.To.Format(dateLayout), Label: p.Label})
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var raw periodJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	from, err := time.Parse(dateLayout, raw.From)
	if err != nil {
		return fmt.Errorf("invalid period start %q: %w", raw.From, err)
	}
	to, err := time.Parse(dateLayout, raw.To)
	if err != nil {
		return fmt.Errorf("invalid period end %q: %w", raw.To, err)
	}
	p.From, p.To, p.Label = from, to, raw.Label
	return nil
}

// Periods are the windows of one rollup run
type Periods struct {
	Target    YearMonth
	This      Period
	Prev      Period
	YoY       Period
	AsOf      time.Time
	NextMonth YearMonth
}

// ResolvePeriods computes this/prev/yoy calendar months for the target month.
// prev wraps the year at January; yoy is the same month one year earlier.
func ResolvePeriods(year, month int, loc *time.Location) (Periods, error) {
	target, err := NewYearMonth(year, month)
	if err != nil {
		return Periods{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return Periods{
		Target:    target,
		This:      target.Period(PeriodThis, loc),
		Prev:      target.AddMonths(-1).Period(PeriodPrev, loc),
		YoY:       target.AddMonths(-12).Period(PeriodYoY, loc),
		AsOf:      target.LastDay(loc),
		NextMonth: target.AddMonths(1),
	}, nil
}

// RollingWindow returns the trailing window of days ending at asOf inclusive
func RollingWindow(asOf time.Time, days int, label PeriodLabel) Period {
	return Period{From: asOf.AddDate(0, 0, -(days - 1)), To: asOf, Label: label}
}

// HistoryRange returns the inclusive range covering months calendar months ending at end
func HistoryRange(end YearMonth, months int, loc *time.Location) Period {
	return Period{From: end.AddMonths(-(months - 1)).FirstDay(loc), To: end.LastDay(loc)}
}
