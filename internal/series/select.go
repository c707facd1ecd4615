package series

import (
	"fmt"
	"math"
	"time"
)

// TimeSelection restricts a series to part of the year. At most one of
// Seasons, Months, or DOYBounds may be set.
type TimeSelection struct {
	// Seasons selects three-month meteorological seasons: DJF, MAM, JJA, SON.
	Seasons []string
	// Months selects calendar months, January = 1.
	Months []int
	// DOYBounds selects an inclusive [start, end] day-of-year range.
	// Start > end wraps across the year boundary.
	DOYBounds *[2]int
	// Drop removes entries outside the selection instead of masking them NaN.
	Drop bool
}

var seasonMonths = map[string][3]time.Month{
	"DJF": {time.December, time.January, time.February},
	"MAM": {time.March, time.April, time.May},
	"JJA": {time.June, time.July, time.August},
	"SON": {time.September, time.October, time.November},
}

// SelectTime applies a time selection to the series, masking entries outside
// the selection to NaN or dropping them when sel.Drop is set. An empty
// selection returns a copy of the input.
func SelectTime(s *Series, sel TimeSelection) (*Series, error) {
	n := 0
	if len(sel.Seasons) > 0 {
		n++
	}
	if len(sel.Months) > 0 {
		n++
	}
	if sel.DOYBounds != nil {
		n++
	}
	if n > 1 {
		return nil, fmt.Errorf("select time: only one indexing method may be given, got %d", n)
	}
	if n == 0 {
		return s.Copy(), nil
	}

	keep, err := sel.mask(s.Times)
	if err != nil {
		return nil, err
	}

	if !sel.Drop {
		out := s.Copy()
		for i, k := range keep {
			if !k {
				out.Values[i] = math.NaN()
			}
		}
		return out, nil
	}

	out := &Series{Attrs: s.Attrs}
	for i, k := range keep {
		if k {
			out.Times = append(out.Times, s.Times[i])
			out.Values = append(out.Values, s.Values[i])
		}
	}
	return out, nil
}

func (sel TimeSelection) mask(times []time.Time) ([]bool, error) {
	keep := make([]bool, len(times))

	switch {
	case len(sel.Seasons) > 0:
		months := map[time.Month]bool{}
		for _, name := range sel.Seasons {
			sm, ok := seasonMonths[name]
			if !ok {
				return nil, fmt.Errorf("select time: unknown season %q", name)
			}
			for _, m := range sm {
				months[m] = true
			}
		}
		for i, t := range times {
			keep[i] = months[t.Month()]
		}

	case len(sel.Months) > 0:
		months := map[time.Month]bool{}
		for _, m := range sel.Months {
			if m < 1 || m > 12 {
				return nil, fmt.Errorf("select time: month %d out of range", m)
			}
			months[time.Month(m)] = true
		}
		for i, t := range times {
			keep[i] = months[t.Month()]
		}

	case sel.DOYBounds != nil:
		start, end := sel.DOYBounds[0], sel.DOYBounds[1]
		for i, t := range times {
			doy := t.YearDay()
			if start <= end {
				keep[i] = doy >= start && doy <= end
			} else {
				// Wrapping range, e.g. [335, 59] for winter.
				keep[i] = doy >= start || doy <= end
			}
		}
	}

	return keep, nil
}
