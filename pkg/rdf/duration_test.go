package rdf

import (
	"math"
	"testing"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== Day-time duration Tests =====

func TestFormatDayTimeDuration(t *testing.T) {
	tests := []struct {
		ms       int64
		expected string
	}{
		{0, "PT0S"},
		{5400000, "PT1H30M"},
		{-3600000, "-PT1H"},
		{86400000, "P1D"},
		{90000000, "P1DT1H"},
		{1500, "PT1.5S"},
		{1001, "PT1.001S"},
		{120, "PT0.12S"},
		{60000, "PT1M"},
		{86400000 + 1, "P1DT0.001S"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDayTimeDuration(tt.ms))
		})
	}
}

func TestParseDayTimeDuration(t *testing.T) {
	tests := []struct {
		input string
		ms    int64
	}{
		{"PT0S", 0},
		{"PT1H30M", 5400000},
		{"-PT1H", -3600000},
		{"P1D", 86400000},
		{"P1DT2H3M4.5S", 86400000 + 2*3600000 + 3*60000 + 4500},
		{"PT90M", 5400000},
		{"PT25H", 90000000},
		{"PT0.0005S", 1},
		{"P0D", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDayTimeDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.ms, d.Milliseconds())
		})
	}
}

func TestParseDayTimeDuration_Errors(t *testing.T) {
	tests := []struct {
		input string
		part  string
		token string
	}{
		{"", PartSign, ""},
		{"P", PartPrefix, "P"},
		{"-P", PartPrefix, "P"},
		{"1D", PartPrefix, "1"},
		{"PT", PartTime, "T"},
		{"P1DT", PartTime, "T"},
		{"PT1S2M", PartTime, "2M"},
		{"PT1H1H", PartTime, "1H"},
		{"PT1.5M", PartTime, "1.5M"},
		{"PT1.S", PartTime, "1."},
		{"P1Y", PartDay, "1Y"},
		{"P1D2H", PartDay, "2H"},
		{"P1.5D", PartDay, "1.5D"},
		{"PTH", PartTime, "H"},
		{"PT5", PartTime, "5"},
		{"PT1H30MX", PartTime, "X"},
		{"P0DT0S", PartPrefix, "0DT0S"},
		{"P200000000000D", PartDay, "200000000000D"},
		{"PT3000000000000000H", PartTime, "3000000000000000H"},
		{"-PT9223372036854775807S", PartTime, "9223372036854775807S"},
		{"P100000000000DT900000000000H", PartTime, "900000000000H"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseDayTimeDuration(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDuration))

			var de *DurationError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.part, de.Part)
			assert.Equal(t, tt.token, de.Token)
			assert.Contains(t, err.Error(), tt.input)
		})
	}
}

func TestParseDayTimeDuration_LargeValues(t *testing.T) {
	d, err := ParseDayTimeDuration("P100000000000D")
	require.NoError(t, err)
	assert.Equal(t, int64(100000000000*86400000), d.Milliseconds())

	d, err = ParseDayTimeDuration("-P100000000000D")
	require.NoError(t, err)
	assert.Equal(t, int64(-100000000000*86400000), d.Milliseconds())

	// Hand-built values saturate instead of wrapping
	huge := DayTimeDuration{Days: 1 << 62}
	assert.Equal(t, int64(math.MaxInt64), huge.Milliseconds())
	huge.Negative = true
	assert.Equal(t, int64(-math.MaxInt64), huge.Milliseconds())
}

func TestDayTimeDurationNormalization(t *testing.T) {
	d := DayTimeDurationFromMilliseconds(90 * 60000)
	assert.Equal(t, DayTimeDuration{Hours: 1, Minutes: 30}, d)

	d = DayTimeDurationFromMilliseconds(25 * 3600000)
	assert.Equal(t, DayTimeDuration{Days: 1, Hours: 1}, d)

	d = DayTimeDurationFromMilliseconds(-1500)
	assert.Equal(t, DayTimeDuration{Negative: true, Seconds: 1.5}, d)

	parsed, err := ParseDayTimeDuration("PT25H")
	require.NoError(t, err)
	assert.Equal(t, "P1DT1H", parsed.String())
}

func TestDayTimeDurationRoundTrip(t *testing.T) {
	inputs := []string{"PT0S", "P3DT4H5M6.789S", "-P10D", "PT59.999S", "PT36H", "-PT0.001S", "P400DT23H59M59S"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			d, err := ParseDayTimeDuration(input)
			require.NoError(t, err)

			formatted := FormatDayTimeDuration(d.Milliseconds())
			again, err := ParseDayTimeDuration(formatted)
			require.NoError(t, err)
			assert.Equal(t, d.Milliseconds(), again.Milliseconds())
		})
	}
}

// ===== Year-month duration Tests =====

func TestFormatYearMonthDuration(t *testing.T) {
	assert.Equal(t, "P0M", FormatYearMonthDuration(0))
	assert.Equal(t, "P1Y6M", FormatYearMonthDuration(18))
	assert.Equal(t, "P1Y", FormatYearMonthDuration(12))
	assert.Equal(t, "P5M", FormatYearMonthDuration(5))
	assert.Equal(t, "-P2Y1M", FormatYearMonthDuration(-25))
}

func TestParseYearMonthDuration(t *testing.T) {
	tests := []struct {
		input  string
		months int64
	}{
		{"P0M", 0},
		{"P0Y", 0},
		{"P1Y6M", 18},
		{"P18M", 18},
		{"-P1Y", -12},
		{"P2Y", 24},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseYearMonthDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.months, d.TotalMonths())
		})
	}

	d, err := ParseYearMonthDuration("P18M")
	require.NoError(t, err)
	assert.Equal(t, "P1Y6M", d.String())
	assert.Equal(t, YearMonthDuration{Years: 1, Months: 6}, YearMonthDurationFromMonths(18))
}

func TestParseYearMonthDuration_Errors(t *testing.T) {
	tests := []struct {
		input string
		part  string
		token string
	}{
		{"P", PartPrefix, "P"},
		{"P1D", PartYearMonth, "D"},
		{"P1YT1H", PartYearMonth, "T"},
		{"PT1S", PartYearMonth, "T"},
		{"P1M1Y", PartYearMonth, "1Y"},
		{"P1.5Y", PartYearMonth, "1.5Y"},
		{"P0Y0M", PartYearMonth, "P0Y0M"},
		{"P1X", PartYearMonth, "1X"},
		{"P9223372036854775807Y", PartYearMonth, "P9223372036854775807Y"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseYearMonthDuration(tt.input)
			require.Error(t, err)

			var de *DurationError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.part, de.Part)
			assert.Equal(t, tt.token, de.Token)
		})
	}
}

// ===== Duration literal Tests =====

func TestDurationLiterals(t *testing.T) {
	lit := NewDayTimeDurationLiteral(5400000)
	assert.Equal(t, "PT1H30M", lit.Value())
	assert.True(t, lit.Datatype().Equals(XSDDayTimeDuration))

	d, err := lit.DayTimeDuration()
	require.NoError(t, err)
	assert.Equal(t, int64(5400000), d.Milliseconds())

	_, err = lit.YearMonthDuration()
	assert.True(t, errors.Is(err, ErrDatatypeMismatch))

	ym := NewYearMonthDurationLiteral(18)
	assert.Equal(t, "P1Y6M", ym.Value())

	canonical, err := CanonicalDuration(NewTypedLiteral("PT90M", XSDDayTimeDuration))
	require.NoError(t, err)
	assert.Equal(t, "PT1H30M", canonical.Value())

	_, err = CanonicalDuration(NewTypedLiteral("P", XSDYearMonthDuration))
	assert.True(t, errors.Is(err, ErrInvalidDuration))

	plain := NewLiteral("PT90M")
	same, err := CanonicalDuration(plain)
	require.NoError(t, err)
	assert.Same(t, plain, same)
}
