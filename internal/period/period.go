// Package period implements calendar bucketing: day normalization, month
// arithmetic with end-of-month clamping, and period ranges with their labels.
package period

import (
	"fmt"
	"time"

	"github.com/iho/fincore/internal/domain"
)

// Range is a calendar period. End is the last day inside the period.
type Range struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls on a day inside the range.
func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of calendar days in the range.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths adds n calendar months to t. A day that does not exist in the
// target month clamps to its last day, so 2026-01-31 + 1 is 2026-02-28.
func AddMonths(t time.Time, n int) time.Time {
	return addMonthsAnchored(Day(t), n, t.Day())
}

// AddMonthsAnchored adds n months to t landing on anchorDay, clamped to the
// length of the target month. It keeps a schedule anchored on the 31st from
// drifting to the 28th after February.
func AddMonthsAnchored(t time.Time, n, anchorDay int) time.Time {
	return addMonthsAnchored(Day(t), n, anchorDay)
}

func addMonthsAnchored(t time.Time, n, anchorDay int) time.Time {
	y, m, _ := t.Date()
	total := int(m) - 1 + n
	y += total / 12
	mi := total % 12
	if mi < 0 {
		mi += 12
		y--
	}
	month := time.Month(mi + 1)
	day := anchorDay
	if last := DaysIn(y, month); day > last {
		day = last
	}
	return time.Date(y, month, day, 0, 0, 0, 0, time.UTC)
}

// Label returns the canonical label of the period of kind containing t:
// 2026-02-14 (daily), 2026-W07 (weekly, ISO), 2026-02 (monthly),
// 2026-Q1 (quarterly) or 2026 (annual).
func Label(kind domain.PeriodKind, t time.Time) (string, error) {
	d := Day(t)
	switch kind {
	case domain.PeriodDaily:
		return d.Format(time.DateOnly), nil
	case domain.PeriodWeekly:
		y, w := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w), nil
	case domain.PeriodMonthly:
		return d.Format("2006-01"), nil
	case domain.PeriodQuarterly:
		return fmt.Sprintf("%04d-Q%d", d.Year(), (int(d.Month())-1)/3+1), nil
	case domain.PeriodAnnual:
		return fmt.Sprintf("%04d", d.Year()), nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidPeriodKind, kind)
}

// Containing returns the period of kind that contains ref.
func Containing(kind domain.PeriodKind, ref time.Time) (Range, error) {
	d := Day(ref)
	var start, end time.Time

	switch kind {
	case domain.PeriodDaily:
		start, end = d, d
	case domain.PeriodWeekly:
		offset := (int(d.Weekday()) + 6) % 7
		start = d.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 6)
	case domain.PeriodMonthly:
		start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	case domain.PeriodQuarterly:
		first := time.Month((int(d.Month())-1)/3*3 + 1)
		start = time.Date(d.Year(), first, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 3, -1)
	case domain.PeriodAnnual:
		start = time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return Range{}, fmt.Errorf("%w: %q", domain.ErrInvalidPeriodKind, kind)
	}

	label, err := Label(kind, start)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end, Label: label}, nil
}

// Previous returns the period of kind immediately before the one containing ref.
func Previous(kind domain.PeriodKind, ref time.Time) (Range, error) {
	cur, err := Containing(kind, ref)
	if err != nil {
		return Range{}, err
	}
	return Containing(kind, cur.Start.AddDate(0, 0, -1))
}

// Next returns the period of kind immediately after the one containing ref.
func Next(kind domain.PeriodKind, ref time.Time) (Range, error) {
	cur, err := Containing(kind, ref)
	if err != nil {
		return Range{}, err
	}
	return Containing(kind, cur.End.AddDate(0, 0, 1))
}

// Buckets returns every period of kind overlapping [start, end] in order. The
// first and last buckets are clipped to the range; labels stay those of the
// full periods.
func Buckets(start, end time.Time, kind domain.PeriodKind) ([]Range, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s is before %s", domain.ErrInvalidPeriodRange,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	var buckets []Range
	cursor := start
	for !cursor.After(end) {
		r, err := Containing(kind, cursor)
		if err != nil {
			return nil, err
		}
		if r.Start.Before(start) {
			r.Start = start
		}
		if r.End.After(end) {
			r.End = end
		}
		buckets = append(buckets, r)
		cursor = r.End.AddDate(0, 0, 1)
	}
	return buckets, nil
}
