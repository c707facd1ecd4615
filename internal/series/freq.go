package series

import (
	"fmt"
	"strings"
	"time"
)

// Freq is a parsed resampling frequency.
//
// Supported frequency strings follow the pandas offset subset used by climate
// tooling:
//
//	D        calendar day
//	W        week starting Monday
//	MS       month start
//	QS-<MMM> quarter start anchored at the named month (QS alone = QS-JAN)
//	YS       year start (January), alias AS
//	AS-<MMM> year start anchored at the named month
type Freq struct {
	Kind        FreqKind
	AnchorMonth time.Month
}

// FreqKind enumerates the supported period kinds.
type FreqKind int

const (
	Daily FreqKind = iota
	Weekly
	MonthStart
	QuarterStart
	YearStart
)

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseFreq parses a frequency string.
func ParseFreq(freq string) (Freq, error) {
	s := strings.ToUpper(strings.TrimSpace(freq))
	base, anchor, hasAnchor := strings.Cut(s, "-")

	month := time.January
	if hasAnchor {
		m, ok := monthAbbrev[anchor]
		if !ok {
			return Freq{}, fmt.Errorf("unknown frequency anchor %q in %q", anchor, freq)
		}
		month = m
	}

	switch base {
	case "D":
		return Freq{Kind: Daily}, nil
	case "W":
		return Freq{Kind: Weekly}, nil
	case "MS", "M":
		return Freq{Kind: MonthStart}, nil
	case "QS", "Q":
		return Freq{Kind: QuarterStart, AnchorMonth: month}, nil
	case "YS", "AS", "A", "Y":
		return Freq{Kind: YearStart, AnchorMonth: month}, nil
	default:
		return Freq{}, fmt.Errorf("unknown frequency %q", freq)
	}
}

// PeriodStart returns the start of the period containing t, in UTC.
func (f Freq) PeriodStart(t time.Time) time.Time {
	t = t.UTC()
	switch f.Kind {
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Weekly:
		// ISO week, Monday start.
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case MonthStart:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case QuarterStart:
		// Quarters begin at the anchor month and every third month after it.
		monthsSince := (int(t.Month()) - int(f.AnchorMonth) + 12) % 12
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start.AddDate(0, -(monthsSince % 3), 0)
	case YearStart:
		year := t.Year()
		if t.Month() < f.AnchorMonth {
			year--
		}
		return time.Date(year, f.AnchorMonth, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// PeriodEnd returns the exclusive end of the period starting at start.
func (f Freq) PeriodEnd(start time.Time) time.Time {
	switch f.Kind {
	case Daily:
		return start.AddDate(0, 0, 1)
	case Weekly:
		return start.AddDate(0, 0, 7)
	case MonthStart:
		return start.AddDate(0, 1, 0)
	case QuarterStart:
		return start.AddDate(0, 3, 0)
	case YearStart:
		return start.AddDate(1, 0, 0)
	default:
		return start
	}
}
