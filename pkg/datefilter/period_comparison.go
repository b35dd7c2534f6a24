package datefilter

import "math"

// zeroBaselineDelta is reported when the previous period is zero and the current one is not.
const zeroBaselineDelta = 100

// Direction tells Compare which way a change counts as an improvement.
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

// Comparison holds a current aggregate, its previous-period counterpart and the change between them.
type Comparison struct {
	Current      float64
	Previous     float64
	PercentDelta float64
}

// Previous returns the calendar period preceding s. It reports false when s uses a
// relative window, which has no calendar predecessor.
func (s Selector) Previous() (Selector, bool) {
	switch {
	case s.HasYear() && s.HasMonth():
		prevYear, prevMonth := s.Year, s.Month-1
		if prevMonth <= 0 {
			prevMonth = 12
			prevYear = s.Year - 1
		}
		return Selector{Year: prevYear, Month: prevMonth, Period: s.Period}, true
	case s.HasYear():
		return Selector{Year: s.Year - 1, Period: s.Period}, true
	case s.HasMonth():
		prevMonth := s.Month - 1
		if prevMonth <= 0 {
			prevMonth = 12
		}
		return Selector{Month: prevMonth, Period: s.Period}, true
	default:
		return Selector{}, false
	}
}

// PreviousFilter builds the fragment for the period preceding s, with the same
// placeholder shape Filter would produce for that period.
func (s Selector) PreviousFilter(alias string, startIndex int) Fragment {
	if startIndex < 1 {
		startIndex = DefaultStartIndex
	}
	col := alias + timestampColumn

	prev, ok := s.Previous()
	switch {
	case ok && s.HasYear() && s.HasMonth():
		return boundFragment(col, startIndex, boundField{"YEAR", prev.Year}, boundField{"MONTH", prev.Month})
	case ok && s.HasYear():
		return boundFragment(col, startIndex, boundField{"YEAR", prev.Year})
	case ok:
		return boundFragment(col, startIndex, boundField{"MONTH", prev.Month})
	}

	if s.Period == PeriodMonthly {
		return Fragment{Clause: betweenIntervals(col, "60 days", "30 days"), Params: []int{}, StartIndex: startIndex}
	}
	return Fragment{Clause: betweenIntervals(col, "2 years", "1 year"), Params: []int{}, StartIndex: startIndex}
}

// DerivePreviousPeriod is PreviousFilter on the unqualified column starting at $2.
// Callers binding more than the restaurant id first must Renumber the result.
func DerivePreviousPeriod(s Selector) Fragment {
	return s.PreviousFilter("", DefaultStartIndex)
}

// PercentDelta is the change from previous to current in percent. A zero baseline
// yields 100 when current is positive and 0 otherwise. The result is not rounded.
func PercentDelta(current, previous float64) float64 {
	if previous > 0 {
		return ((current - previous) / previous) * 100
	}
	if current > 0 {
		return zeroBaselineDelta
	}
	return 0
}

// Compare pairs two aggregates with their percent change. For LowerIsBetter metrics
// the zero-baseline sentinel is reported as -100.
func Compare(current, previous float64, dir Direction) Comparison {
	delta := PercentDelta(current, previous)
	if dir == LowerIsBetter && previous <= 0 && current > 0 {
		delta = -zeroBaselineDelta
	}
	return Comparison{Current: current, Previous: previous, PercentDelta: delta}
}

// Round1 rounds v to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Rounded returns c with every field rounded to one decimal place.
func (c Comparison) Rounded() Comparison {
	return Comparison{
		Current:      Round1(c.Current),
		Previous:     Round1(c.Previous),
		PercentDelta: Round1(c.PercentDelta),
	}
}
