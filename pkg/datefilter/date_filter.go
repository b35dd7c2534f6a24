package datefilter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// All is the query-string value meaning "no constraint" for year or month.
	All = "todos"

	PeriodMonthly = "mensal"
	PeriodAnnual  = "anual"

	// DefaultStartIndex is the first placeholder a fragment binds. $1 is the restaurant id.
	DefaultStartIndex = 2

	// timestampColumn is the column every metric table filters on.
	timestampColumn = "created_at"

	monthlyWindow = "30 days"
	annualWindow  = "365 days"
)

var (
	ErrInvalidYear  = errors.New("invalid year")
	ErrInvalidMonth = errors.New("invalid month")
)

// Selector is a parsed reporting period. Zero Year or Month means unconstrained.
type Selector struct {
	Year   int
	Month  int
	Period string
}

// Fragment is an AND-prefixed SQL predicate and the values for its placeholders.
type Fragment struct {
	Clause     string
	Params     []int
	StartIndex int
}

// ParseSelector validates raw query-string values. Empty strings and "todos" are
// unconstrained; numbers may carry leading zeros and surrounding whitespace.
// period is kept verbatim: only the exact literals "mensal" and "anual" select a window.
func ParseSelector(year, month, period string) (Selector, error) {
	sel := Selector{Period: period}

	y, err := parseComponent(year)
	if err != nil || y < 0 {
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidYear, year)
	}
	m, err := parseComponent(month)
	if err != nil || m < 0 || m > 12 {
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	sel.Year, sel.Month = y, m
	return sel, nil
}

// parseComponent returns 0 for an unconstrained value.
func parseComponent(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, All) {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// BuildDateFilter parses the raw inputs and builds the current-period fragment.
func BuildDateFilter(year, month, period, alias string, startIndex int) (Fragment, error) {
	sel, err := ParseSelector(year, month, period)
	if err != nil {
		return Fragment{}, err
	}
	return sel.Filter(alias, startIndex), nil
}

// HasYear reports whether a specific year is selected.
func (s Selector) HasYear() bool { return s.Year > 0 }

// HasMonth reports whether a specific month is selected.
func (s Selector) HasMonth() bool { return s.Month > 0 }

// Filter builds the fragment for the selected period. alias is spliced verbatim in
// front of created_at and must never come from user input.
func (s Selector) Filter(alias string, startIndex int) Fragment {
	if startIndex < 1 {
		startIndex = DefaultStartIndex
	}
	col := alias + timestampColumn

	switch {
	case s.HasYear() && s.HasMonth():
		return boundFragment(col, startIndex, boundField{"YEAR", s.Year}, boundField{"MONTH", s.Month})
	case s.HasYear():
		return boundFragment(col, startIndex, boundField{"YEAR", s.Year})
	case s.HasMonth():
		return boundFragment(col, startIndex, boundField{"MONTH", s.Month})
	case s.Period == PeriodMonthly:
		return Fragment{Clause: sinceInterval(col, monthlyWindow), Params: []int{}, StartIndex: startIndex}
	case s.Period == PeriodAnnual:
		return Fragment{Clause: sinceInterval(col, annualWindow), Params: []int{}, StartIndex: startIndex}
	default:
		return Fragment{Clause: "", Params: []int{}, StartIndex: startIndex}
	}
}

type boundField struct {
	name  string
	value int
}

// boundFragment binds one EXTRACT equality per field at consecutive placeholders.
func boundFragment(col string, startIndex int, fields ...boundField) Fragment {
	preds := make([]string, 0, len(fields))
	params := make([]int, 0, len(fields))
	for i, f := range fields {
		preds = append(preds, fmt.Sprintf("EXTRACT(%s FROM %s) = $%d", f.name, col, startIndex+i))
		params = append(params, f.value)
	}
	return Fragment{Clause: "AND " + strings.Join(preds, " AND "), Params: params, StartIndex: startIndex}
}

func sinceInterval(col, window string) string {
	return fmt.Sprintf("AND %s >= NOW() - INTERVAL '%s'", col, window)
}

func betweenIntervals(col, from, to string) string {
	return fmt.Sprintf("AND %s >= NOW() - INTERVAL '%s' AND %s < NOW() - INTERVAL '%s'", col, from, col, to)
}

// Args returns the bound values ready to append to a query's argument list.
func (f Fragment) Args() []interface{} {
	args := make([]interface{}, 0, len(f.Params))
	for _, p := range f.Params {
		args = append(args, p)
	}
	return args
}

// Next returns the first placeholder number free after this fragment.
func (f Fragment) Next() int {
	start := f.StartIndex
	if start < 1 {
		start = DefaultStartIndex
	}
	return start + len(f.Params)
}

// IsEmpty reports whether the fragment adds no predicate.
func (f Fragment) IsEmpty() bool { return f.Clause == "" }

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// Renumber shifts every placeholder so the fragment starts at startIndex.
func (f Fragment) Renumber(startIndex int) Fragment {
	if startIndex < 1 {
		startIndex = DefaultStartIndex
	}
	from := f.StartIndex
	if from < 1 {
		from = DefaultStartIndex
	}
	shift := startIndex - from

	clause := placeholderPattern.ReplaceAllStringFunc(f.Clause, func(ph string) string {
		n, _ := strconv.Atoi(ph[1:])
		return "$" + strconv.Itoa(n+shift)
	})
	params := make([]int, len(f.Params))
	copy(params, f.Params)
	return Fragment{Clause: clause, Params: params, StartIndex: startIndex}
}

// Label renders the selection for the "periodo" response field.
func (s Selector) Label() string {
	switch {
	case s.HasYear() && s.HasMonth():
		return fmt.Sprintf("%04d-%02d", s.Year, s.Month)
	case s.HasYear():
		return strconv.Itoa(s.Year)
	case s.HasMonth():
		return fmt.Sprintf("%s-%02d", All, s.Month)
	case s.Period == PeriodMonthly || s.Period == PeriodAnnual:
		return s.Period
	default:
		return All
	}
}
