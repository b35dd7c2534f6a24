package datefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelector_Previous(t *testing.T) {
	tests := []struct {
		name   string
		sel    Selector
		want   Selector
		wantOK bool
	}{
		{name: "january wraps to december", sel: Selector{Year: 2024, Month: 1}, want: Selector{Year: 2023, Month: 12}, wantOK: true},
		{name: "mid year month", sel: Selector{Year: 2024, Month: 6}, want: Selector{Year: 2024, Month: 5}, wantOK: true},
		{name: "year only", sel: Selector{Year: 2024}, want: Selector{Year: 2023}, wantOK: true},
		{name: "month only wraps", sel: Selector{Month: 1}, want: Selector{Month: 12}, wantOK: true},
		{name: "relative window", sel: Selector{Period: PeriodMonthly}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.sel.Previous()
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDerivePreviousPeriod(t *testing.T) {
	tests := []struct {
		name       string
		sel        Selector
		wantClause string
		wantParams []int
	}{
		{
			name:       "previous month across year boundary",
			sel:        Selector{Year: 2024, Month: 1, Period: PeriodAnnual},
			wantClause: "AND EXTRACT(YEAR FROM created_at) = $2 AND EXTRACT(MONTH FROM created_at) = $3",
			wantParams: []int{2023, 12},
		},
		{
			name:       "previous year",
			sel:        Selector{Year: 2024, Period: PeriodMonthly},
			wantClause: "AND EXTRACT(YEAR FROM created_at) = $2",
			wantParams: []int{2023},
		},
		{
			name:       "shifted monthly window",
			sel:        Selector{Period: PeriodMonthly},
			wantClause: "AND created_at >= NOW() - INTERVAL '60 days' AND created_at < NOW() - INTERVAL '30 days'",
			wantParams: []int{},
		},
		{
			name:       "shifted annual window",
			sel:        Selector{Period: PeriodAnnual},
			wantClause: "AND created_at >= NOW() - INTERVAL '2 years' AND created_at < NOW() - INTERVAL '1 year'",
			wantParams: []int{},
		},
		{
			name:       "unknown period uses annual window",
			sel:        Selector{Period: "semanal"},
			wantClause: "AND created_at >= NOW() - INTERVAL '2 years' AND created_at < NOW() - INTERVAL '1 year'",
			wantParams: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePreviousPeriod(tt.sel)
			assert.Equal(t, tt.wantClause, got.Clause)
			assert.Equal(t, tt.wantParams, got.Params)
		})
	}
}

func TestPreviousFilter_AliasAndOffset(t *testing.T) {
	got := Selector{Year: 2024, Month: 3}.PreviousFilter("s.", 4)
	assert.Equal(t, "AND EXTRACT(YEAR FROM s.created_at) = $4 AND EXTRACT(MONTH FROM s.created_at) = $5", got.Clause)
	assert.Equal(t, []int{2024, 2}, got.Params)

	window := Selector{Period: PeriodMonthly}.PreviousFilter("d.", 3)
	assert.Equal(t, "AND d.created_at >= NOW() - INTERVAL '60 days' AND d.created_at < NOW() - INTERVAL '30 days'", window.Clause)
}

func TestPreviousFilter_YearOneStillBinds(t *testing.T) {
	got := Selector{Year: 1}.PreviousFilter("", 2)
	assert.Equal(t, "AND EXTRACT(YEAR FROM created_at) = $2", got.Clause)
	assert.Equal(t, []int{0}, got.Params)
}

func TestPercentDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{name: "growth", current: 150, previous: 100, want: 50},
		{name: "drop", current: 75, previous: 100, want: -25},
		{name: "zero baseline with activity", current: 50, previous: 0, want: 100},
		{name: "both zero", current: 0, previous: 0, want: 0},
		{name: "unchanged", current: 10, previous: 10, want: 0},
		{name: "fell to zero", current: 0, previous: 40, want: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentDelta(tt.current, tt.previous), 1e-9)
		})
	}
}

func TestCompare_Direction(t *testing.T) {
	up := Compare(50, 0, HigherIsBetter)
	assert.Equal(t, Comparison{Current: 50, Previous: 0, PercentDelta: 100}, up)

	down := Compare(50, 0, LowerIsBetter)
	assert.Equal(t, float64(-100), down.PercentDelta)

	// only the zero-baseline sentinel depends on direction
	assert.InDelta(t, 20.0, Compare(36, 30, LowerIsBetter).PercentDelta, 1e-9)
	assert.Equal(t, float64(0), Compare(0, 0, LowerIsBetter).PercentDelta)
}

func TestComparison_Rounded(t *testing.T) {
	c := Compare(33.333, 30, HigherIsBetter).Rounded()
	assert.Equal(t, 33.3, c.Current)
	assert.Equal(t, 30.0, c.Previous)
	assert.Equal(t, 11.1, c.PercentDelta)
	assert.Equal(t, -2.5, Round1(-2.46))
}
