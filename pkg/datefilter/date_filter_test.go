package datefilter

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDateFilter_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		year       string
		month      string
		period     string
		alias      string
		startIndex int
		wantClause string
		wantParams []int
	}{
		{
			name:       "no selection, annual window",
			period:     "anual",
			startIndex: 2,
			wantClause: "AND created_at >= NOW() - INTERVAL '365 days'",
			wantParams: []int{},
		},
		{
			name:       "todos on both, monthly window",
			year:       "todos",
			month:      "todos",
			period:     "mensal",
			startIndex: 2,
			wantClause: "AND created_at >= NOW() - INTERVAL '30 days'",
			wantParams: []int{},
		},
		{
			name:       "year only with alias",
			year:       "2024",
			month:      "todos",
			period:     "anual",
			alias:      "s.",
			startIndex: 2,
			wantClause: "AND EXTRACT(YEAR FROM s.created_at) = $2",
			wantParams: []int{2024},
		},
		{
			name:       "year and month at offset 3",
			year:       "2024",
			month:      "5",
			period:     "anual",
			startIndex: 3,
			wantClause: "AND EXTRACT(YEAR FROM created_at) = $3 AND EXTRACT(MONTH FROM created_at) = $4",
			wantParams: []int{2024, 5},
		},
		{
			name:       "month only",
			month:      "11",
			period:     "mensal",
			alias:      "d.",
			startIndex: 2,
			wantClause: "AND EXTRACT(MONTH FROM d.created_at) = $2",
			wantParams: []int{11},
		},
		{
			name:       "leading zero and whitespace",
			year:       " 2024 ",
			month:      "03",
			period:     "anual",
			startIndex: 2,
			wantClause: "AND EXTRACT(YEAR FROM created_at) = $2 AND EXTRACT(MONTH FROM created_at) = $3",
			wantParams: []int{2024, 3},
		},
		{
			name:       "unknown period leaves base query alone",
			year:       "todos",
			period:     "semanal",
			startIndex: 2,
			wantClause: "",
			wantParams: []int{},
		},
		{
			name:       "empty period leaves base query alone",
			startIndex: 2,
			wantClause: "",
			wantParams: []int{},
		},
		{
			name:       "zero start index falls back to default",
			year:       "2023",
			period:     "anual",
			startIndex: 0,
			wantClause: "AND EXTRACT(YEAR FROM created_at) = $2",
			wantParams: []int{2023},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildDateFilter(tt.year, tt.month, tt.period, tt.alias, tt.startIndex)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClause, got.Clause)
			assert.Equal(t, tt.wantParams, got.Params)
		})
	}
}

func TestBuildDateFilter_PeriodIgnoredWhenDatesSelected(t *testing.T) {
	for _, period := range []string{"anual", "mensal", "", "whatever"} {
		got, err := BuildDateFilter("2022", "12", period, "", 2)
		require.NoError(t, err)
		assert.Equal(t, "AND EXTRACT(YEAR FROM created_at) = $2 AND EXTRACT(MONTH FROM created_at) = $3", got.Clause)
		assert.Equal(t, []int{2022, 12}, got.Params)
	}
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

func placeholders(clause string) []string {
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(clause, -1) {
		out = append(out, m[1])
	}
	return out
}

func TestFilter_StartIndexOffsetLaw(t *testing.T) {
	for k := 1; k <= 12; k++ {
		both := Selector{Year: 2024, Month: 7, Period: PeriodAnnual}.Filter("o.", k)
		assert.Equal(t, []string{fmt.Sprint(k), fmt.Sprint(k + 1)}, placeholders(both.Clause))
		assert.Len(t, both.Params, 2)
		assert.Equal(t, k+2, both.Next())

		yearOnly := Selector{Year: 2024, Period: PeriodAnnual}.Filter("", k)
		assert.Equal(t, []string{fmt.Sprint(k)}, placeholders(yearOnly.Clause))
		assert.Equal(t, k+1, yearOnly.Next())

		monthOnly := Selector{Month: 7}.Filter("", k)
		assert.Equal(t, []string{fmt.Sprint(k)}, placeholders(monthOnly.Clause))

		window := Selector{Period: PeriodMonthly}.Filter("", k)
		assert.Empty(t, placeholders(window.Clause))
		assert.Equal(t, k, window.Next())
	}
}

func TestFilter_Deterministic(t *testing.T) {
	sel := Selector{Year: 2024, Month: 2, Period: PeriodMonthly}
	first := sel.Filter("s.", 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, sel.Filter("s.", 4))
	}
}

func TestParseSelector_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		year    string
		month   string
		wantErr error
	}{
		{name: "non numeric year", year: "abc", wantErr: ErrInvalidYear},
		{name: "negative year", year: "-2024", wantErr: ErrInvalidYear},
		{name: "zero year", year: "0", wantErr: ErrInvalidYear},
		{name: "non numeric month", year: "2024", month: "may", wantErr: ErrInvalidMonth},
		{name: "month thirteen", month: "13", wantErr: ErrInvalidMonth},
		{name: "month zero", month: "00", wantErr: ErrInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSelector(tt.year, tt.month, PeriodAnnual)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseSelector_TodosCaseInsensitive(t *testing.T) {
	sel, err := ParseSelector("TODOS", " Todos ", PeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, Selector{Period: PeriodMonthly}, sel)
}

func TestFragment_ArgsAndRenumber(t *testing.T) {
	f := Selector{Year: 2024, Month: 1}.Filter("", 2)
	assert.Equal(t, []interface{}{2024, 1}, f.Args())

	moved := f.Renumber(5)
	assert.Equal(t, "AND EXTRACT(YEAR FROM created_at) = $5 AND EXTRACT(MONTH FROM created_at) = $6", moved.Clause)
	assert.Equal(t, []int{2024, 1}, moved.Params)
	assert.Equal(t, 7, moved.Next())

	// the original is untouched
	assert.Equal(t, "AND EXTRACT(YEAR FROM created_at) = $2 AND EXTRACT(MONTH FROM created_at) = $3", f.Clause)

	empty := Selector{Period: "semanal"}.Filter("", 2)
	assert.True(t, empty.IsEmpty())
	assert.Empty(t, empty.Args())
}

func TestSelector_Label(t *testing.T) {
	assert.Equal(t, "2024-03", Selector{Year: 2024, Month: 3}.Label())
	assert.Equal(t, "2024", Selector{Year: 2024, Period: PeriodMonthly}.Label())
	assert.Equal(t, "todos-09", Selector{Month: 9}.Label())
	assert.Equal(t, "mensal", Selector{Period: PeriodMonthly}.Label())
	assert.Equal(t, "todos", Selector{Period: "semanal"}.Label())
	assert.Equal(t, "todos", Selector{}.Label())
}
