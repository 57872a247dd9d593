package rdf

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/factstore/internal/errors"
)

// XSD duration codecs
// https://www.w3.org/TR/xmlschema11-2/#dayTimeDuration
// https://www.w3.org/TR/xmlschema11-2/#yearMonthDuration

var (
	// ErrInvalidDuration is matched by every *DurationError
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrDatatypeMismatch is returned when decoding a literal whose datatype
	// does not carry the requested value space
	ErrDatatypeMismatch = errors.New("literal datatype mismatch")
)

const (
	millisPerSecond = 1000
	millisPerMinute = 60 * millisPerSecond
	millisPerHour   = 60 * millisPerMinute
	millisPerDay    = 24 * millisPerHour
)

// Duration parts named in a DurationError
const (
	PartSign      = "sign"
	PartPrefix    = "designator"
	PartDay       = "day"
	PartTime      = "time"
	PartYearMonth = "year-month"
)

// DurationError describes which part of a duration lexical form is malformed
type DurationError struct {
	Input  string // the full input
	Part   string // one of the Part* constants
	Token  string // offending substring, may be empty
	Reason string
}

func (e *DurationError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("invalid duration %q: %s part %q: %s", e.Input, e.Part, e.Token, e.Reason)
	}
	return fmt.Sprintf("invalid duration %q: %s part: %s", e.Input, e.Part, e.Reason)
}

func (e *DurationError) Unwrap() error {
	return ErrInvalidDuration
}

// DayTimeDuration is the decoded form of an xsd:dayTimeDuration
type DayTimeDuration struct {
	Negative bool
	Days     int64
	Hours    int64
	Minutes  int64
	Seconds  float64
}

// YearMonthDuration is the decoded form of an xsd:yearMonthDuration
type YearMonthDuration struct {
	Negative bool
	Years    int64
	Months   int64
}

// durationComponent is one number+designator pair, e.g. "1.5S"
type durationComponent struct {
	token      string
	designator byte
	whole      int64
	fraction   string // digits after '.', empty when integral
}

// scanComponent reads the component at the start of s and returns the rest
func scanComponent(s string) (durationComponent, string, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		if s != "" && isDesignator(s[0]) {
			return durationComponent{token: s[:1]}, "", fmt.Errorf("missing number before designator %q", s[0])
		}
		return durationComponent{token: s}, "", fmt.Errorf("expected a number")
	}
	whole, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return durationComponent{token: s[:i]}, "", fmt.Errorf("number out of range")
	}
	c := durationComponent{whole: whole}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i+1 {
			return durationComponent{token: s[:j]}, "", fmt.Errorf("missing digits after decimal point")
		}
		c.fraction = s[i+1 : j]
		i = j
	}
	if i >= len(s) {
		return durationComponent{token: s}, "", fmt.Errorf("missing designator after number")
	}
	c.designator = s[i]
	c.token = s[:i+1]
	return c, s[i+1:], nil
}

func isDesignator(ch byte) bool {
	switch ch {
	case 'Y', 'M', 'D', 'H', 'S', 'T':
		return true
	}
	return false
}

// splitSign strips the optional '-' and the mandatory 'P'
func splitSign(input string) (bool, string, error) {
	rest := input
	negative := false
	if strings.HasPrefix(rest, "-") {
		negative = true
		rest = rest[1:]
	}
	if rest == "" {
		return false, "", &DurationError{Input: input, Part: PartSign, Reason: "empty duration"}
	}
	if rest[0] != 'P' {
		return false, "", &DurationError{Input: input, Part: PartPrefix, Token: rest[:1], Reason: "duration must start with 'P'"}
	}
	rest = rest[1:]
	if rest == "" {
		return false, "", &DurationError{Input: input, Part: PartPrefix, Token: "P", Reason: "duration has no components"}
	}
	return negative, rest, nil
}

// ParseDayTimeDuration parses an xsd:dayTimeDuration lexical form
// such as "P1DT2H30M" or "-PT0.5S".
func ParseDayTimeDuration(input string) (DayTimeDuration, error) {
	var d DayTimeDuration
	negative, rest, err := splitSign(input)
	if err != nil {
		return d, err
	}
	d.Negative = negative

	dayPart, timePart, hasT := strings.Cut(rest, "T")
	components := 0
	allZero := true

	if dayPart != "" {
		c, tail, err := scanComponent(dayPart)
		if err != nil {
			return d, &DurationError{Input: input, Part: PartDay, Token: c.token, Reason: err.Error()}
		}
		switch {
		case c.designator == 'Y' || c.designator == 'M':
			return d, &DurationError{Input: input, Part: PartDay, Token: c.token,
				Reason: "year-month component in day-time duration"}
		case c.designator != 'D':
			return d, &DurationError{Input: input, Part: PartDay, Token: c.token,
				Reason: fmt.Sprintf("unexpected designator %q before 'T'", c.designator)}
		case c.fraction != "":
			return d, &DurationError{Input: input, Part: PartDay, Token: c.token, Reason: "days must be integral"}
		case tail != "":
			return d, &DurationError{Input: input, Part: PartDay, Token: tail, Reason: "unexpected characters after days"}
		}
		d.Days = c.whole
		components++
		allZero = allZero && c.whole == 0
	}

	timeText := timePart
	if hasT {
		if timePart == "" {
			return d, &DurationError{Input: input, Part: PartTime, Token: "T", Reason: "'T' must be followed by at least one time component"}
		}
		order := 0
		for timePart != "" {
			c, tail, err := scanComponent(timePart)
			if err != nil {
				return d, &DurationError{Input: input, Part: PartTime, Token: c.token, Reason: err.Error()}
			}
			var rank int
			switch c.designator {
			case 'H':
				rank = 1
			case 'M':
				rank = 2
			case 'S':
				rank = 3
			default:
				return d, &DurationError{Input: input, Part: PartTime, Token: c.token,
					Reason: fmt.Sprintf("unexpected designator %q after 'T'", c.designator)}
			}
			if rank <= order {
				return d, &DurationError{Input: input, Part: PartTime, Token: c.token, Reason: "component out of order"}
			}
			order = rank
			if c.fraction != "" && c.designator != 'S' {
				return d, &DurationError{Input: input, Part: PartTime, Token: c.token, Reason: "only seconds may be fractional"}
			}
			switch c.designator {
			case 'H':
				d.Hours = c.whole
			case 'M':
				d.Minutes = c.whole
			case 'S':
				seconds, err := strconv.ParseFloat(strings.TrimSuffix(c.token, "S"), 64)
				if err != nil {
					return d, &DurationError{Input: input, Part: PartTime, Token: c.token, Reason: "invalid seconds"}
				}
				d.Seconds = seconds
			}
			components++
			allZero = allZero && c.whole == 0 && strings.Trim(c.fraction, "0") == ""
			timePart = tail
		}
	}

	if components == 0 {
		return d, &DurationError{Input: input, Part: PartPrefix, Reason: "duration has no components"}
	}
	if allZero && components > 1 {
		return d, &DurationError{Input: input, Part: PartPrefix, Token: rest,
			Reason: "ambiguous zero duration; use PT0S"}
	}
	if _, ok := mulAdd(d.Days, millisPerDay, 0); !ok {
		return d, &DurationError{Input: input, Part: PartDay, Token: dayPart, Reason: "duration out of range"}
	}
	if _, ok := d.checkedMilliseconds(); !ok {
		return d, &DurationError{Input: input, Part: PartTime, Token: timeText, Reason: "duration out of range"}
	}
	return d, nil
}

// ParseYearMonthDuration parses an xsd:yearMonthDuration lexical form
// such as "P1Y6M".
func ParseYearMonthDuration(input string) (YearMonthDuration, error) {
	var d YearMonthDuration
	negative, rest, err := splitSign(input)
	if err != nil {
		return d, err
	}
	d.Negative = negative

	if i := strings.IndexAny(rest, "TDHS"); i >= 0 {
		return d, &DurationError{Input: input, Part: PartYearMonth, Token: rest[i : i+1],
			Reason: "day-time designator in year-month duration"}
	}

	order := 0
	components := 0
	allZero := true
	for rest != "" {
		c, tail, err := scanComponent(rest)
		if err != nil {
			return d, &DurationError{Input: input, Part: PartYearMonth, Token: c.token, Reason: err.Error()}
		}
		if c.fraction != "" {
			return d, &DurationError{Input: input, Part: PartYearMonth, Token: c.token, Reason: "years and months must be integral"}
		}
		var rank int
		switch c.designator {
		case 'Y':
			rank = 1
			d.Years = c.whole
		case 'M':
			rank = 2
			d.Months = c.whole
		default:
			return d, &DurationError{Input: input, Part: PartYearMonth, Token: c.token,
				Reason: fmt.Sprintf("unexpected designator %q", c.designator)}
		}
		if rank <= order {
			return d, &DurationError{Input: input, Part: PartYearMonth, Token: c.token, Reason: "component out of order"}
		}
		order = rank
		components++
		allZero = allZero && c.whole == 0
		rest = tail
	}
	if allZero && components > 1 {
		return d, &DurationError{Input: input, Part: PartYearMonth, Token: input,
			Reason: "ambiguous zero duration; use P0M"}
	}
	if _, ok := mulAdd(d.Years, 12, d.Months); !ok {
		return d, &DurationError{Input: input, Part: PartYearMonth, Token: input, Reason: "duration out of range"}
	}
	return d, nil
}

// mulAdd returns acc*mul+add for non-negative operands, or false when the
// result does not fit in an int64.
func mulAdd(acc, mul, add int64) (int64, bool) {
	if acc > (math.MaxInt64-add)/mul {
		return 0, false
	}
	return acc*mul + add, true
}

// checkedMilliseconds is the unsigned total of d, or false on overflow
func (d DayTimeDuration) checkedMilliseconds() (int64, bool) {
	total, ok := mulAdd(d.Days, 24, d.Hours)
	if ok {
		total, ok = mulAdd(total, 60, d.Minutes)
	}
	if ok {
		total, ok = mulAdd(total, millisPerMinute, 0)
	}
	if !ok {
		return 0, false
	}
	secs := math.Round(d.Seconds * millisPerSecond)
	if secs >= math.MaxInt64-float64(total) {
		return 0, false
	}
	return total + int64(secs), true
}

// Milliseconds returns the signed total length. Seconds are rounded to the
// nearest millisecond. Parsed durations always fit; a hand-built one that
// overflows saturates at math.MaxInt64.
func (d DayTimeDuration) Milliseconds() int64 {
	total, ok := d.checkedMilliseconds()
	if !ok {
		total = math.MaxInt64
	}
	if d.Negative {
		return -total
	}
	return total
}

// DayTimeDurationFromMilliseconds splits ms into normalized components
func DayTimeDurationFromMilliseconds(ms int64) DayTimeDuration {
	abs := uint64(ms) // #nosec G115 - two's complement magnitude below
	if ms < 0 {
		abs = uint64(-(ms + 1)) + 1 // #nosec G115 - safe for math.MinInt64
	}
	d := DayTimeDuration{Negative: ms < 0}
	d.Days = int64(abs / millisPerDay) // #nosec G115 - quotient fits in int64
	abs %= millisPerDay
	d.Hours = int64(abs / millisPerHour) // #nosec G115
	abs %= millisPerHour
	d.Minutes = int64(abs / millisPerMinute) // #nosec G115
	abs %= millisPerMinute
	d.Seconds = float64(abs) / millisPerSecond
	return d
}

// String renders the canonical lexical form
func (d DayTimeDuration) String() string {
	return FormatDayTimeDuration(d.Milliseconds())
}

// FormatDayTimeDuration renders ms in canonical xsd:dayTimeDuration form.
// Zero renders as "PT0S".
func FormatDayTimeDuration(ms int64) string {
	var b strings.Builder
	if ms < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('P')

	abs := uint64(ms) // #nosec G115
	if ms < 0 {
		abs = uint64(-(ms + 1)) + 1 // #nosec G115
	}
	days := abs / millisPerDay
	abs %= millisPerDay
	hours := abs / millisPerHour
	abs %= millisPerHour
	minutes := abs / millisPerMinute
	abs %= millisPerMinute
	seconds := abs / millisPerSecond
	millis := abs % millisPerSecond

	if days > 0 {
		b.WriteString(strconv.FormatUint(days, 10))
		b.WriteByte('D')
	}
	if hours > 0 || minutes > 0 || seconds > 0 || millis > 0 || days == 0 {
		b.WriteByte('T')
		if hours > 0 {
			b.WriteString(strconv.FormatUint(hours, 10))
			b.WriteByte('H')
		}
		if minutes > 0 {
			b.WriteString(strconv.FormatUint(minutes, 10))
			b.WriteByte('M')
		}
		if seconds > 0 || millis > 0 || (hours == 0 && minutes == 0) {
			b.WriteString(strconv.FormatUint(seconds, 10))
			if millis > 0 {
				frac := fmt.Sprintf("%03d", millis)
				b.WriteByte('.')
				b.WriteString(strings.TrimRight(frac, "0"))
			}
			b.WriteByte('S')
		}
	}
	return b.String()
}

// TotalMonths returns the signed total number of months
func (d YearMonthDuration) TotalMonths() int64 {
	total := d.Years*12 + d.Months
	if d.Negative {
		return -total
	}
	return total
}

// YearMonthDurationFromMonths splits months into normalized years and months
func YearMonthDurationFromMonths(months int64) YearMonthDuration {
	d := YearMonthDuration{Negative: months < 0}
	if months < 0 {
		months = -months
	}
	d.Years = months / 12
	d.Months = months % 12
	return d
}

// String renders the canonical lexical form
func (d YearMonthDuration) String() string {
	return FormatYearMonthDuration(d.TotalMonths())
}

// FormatYearMonthDuration renders months in canonical xsd:yearMonthDuration
// form. Zero renders as "P0M".
func FormatYearMonthDuration(months int64) string {
	d := YearMonthDurationFromMonths(months)
	var b strings.Builder
	if d.Negative {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if d.Years > 0 {
		b.WriteString(strconv.FormatInt(d.Years, 10))
		b.WriteByte('Y')
	}
	if d.Months > 0 || d.Years == 0 {
		b.WriteString(strconv.FormatInt(d.Months, 10))
		b.WriteByte('M')
	}
	return b.String()
}

// NewDayTimeDurationLiteral creates a canonical xsd:dayTimeDuration literal
func NewDayTimeDurationLiteral(ms int64) *Literal {
	return NewTypedLiteral(FormatDayTimeDuration(ms), XSDDayTimeDuration)
}

// NewYearMonthDurationLiteral creates a canonical xsd:yearMonthDuration literal
func NewYearMonthDurationLiteral(months int64) *Literal {
	return NewTypedLiteral(FormatYearMonthDuration(months), XSDYearMonthDuration)
}

// DayTimeDuration decodes an xsd:dayTimeDuration (or day-time only
// xsd:duration) literal.
func (l *Literal) DayTimeDuration() (DayTimeDuration, error) {
	if l.datatype == nil || !(l.datatype.Equals(XSDDayTimeDuration) || l.datatype.Equals(XSDDuration)) {
		return DayTimeDuration{}, errors.Wrapf(ErrDatatypeMismatch, "literal %s is not a day-time duration", l)
	}
	return ParseDayTimeDuration(l.value)
}

// YearMonthDuration decodes an xsd:yearMonthDuration (or year-month only
// xsd:duration) literal.
func (l *Literal) YearMonthDuration() (YearMonthDuration, error) {
	if l.datatype == nil || !(l.datatype.Equals(XSDYearMonthDuration) || l.datatype.Equals(XSDDuration)) {
		return YearMonthDuration{}, errors.Wrapf(ErrDatatypeMismatch, "literal %s is not a year-month duration", l)
	}
	return ParseYearMonthDuration(l.value)
}

// CanonicalDuration returns the literal re-rendered in canonical duration
// form, or the literal itself when it carries no duration datatype.
func CanonicalDuration(l *Literal) (*Literal, error) {
	if l.datatype == nil {
		return l, nil
	}
	switch {
	case l.datatype.Equals(XSDDayTimeDuration):
		d, err := ParseDayTimeDuration(l.value)
		if err != nil {
			return nil, err
		}
		return NewTypedLiteral(d.String(), l.datatype), nil
	case l.datatype.Equals(XSDYearMonthDuration):
		d, err := ParseYearMonthDuration(l.value)
		if err != nil {
			return nil, err
		}
		return NewTypedLiteral(d.String(), l.datatype), nil
	default:
		return l, nil
	}
}
