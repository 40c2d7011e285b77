package analytics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidPeriodType is returned for period types other than month and quarter.
	ErrInvalidPeriodType = errors.New("invalid period type")
	// ErrInvalidPeriodKey is returned when a key does not match YYYY-MM or YYYY-Qn.
	ErrInvalidPeriodKey = errors.New("invalid period key")
)

// PeriodType selects the calendar bucket used for aggregation.
type PeriodType string

const (
	PeriodMonth   PeriodType = "month"
	PeriodQuarter PeriodType = "quarter"
)

// ParsePeriodType parses a period type. An empty string selects PeriodMonth.
func ParsePeriodType(s string) (PeriodType, error) {
	switch PeriodType(strings.ToLower(strings.TrimSpace(s))) {
	case "", PeriodMonth:
		return PeriodMonth, nil
	case PeriodQuarter:
		return PeriodQuarter, nil
	default:
		return "", invalidPeriodType(PeriodType(s))
	}
}

// Valid reports whether t is month or quarter.
func (t PeriodType) Valid() bool {
	return t == PeriodMonth || t == PeriodQuarter
}

// months is the length of one period in calendar months.
func (t PeriodType) months() int {
	if t == PeriodQuarter {
		return 3
	}
	return 1
}

// Period is a calendar month or quarter, identified by the first day it covers.
type Period struct {
	Type  PeriodType
	Start time.Time
}

// PeriodOf returns the period of type t containing date. Only the calendar
// date of the value matters; the result is anchored in UTC.
func PeriodOf(date time.Time, t PeriodType) Period {
	year, month, _ := date.Date()
	if t == PeriodQuarter {
		month = time.Month((int(month)-1)/3*3 + 1)
	}
	return Period{Type: t, Start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// ParsePeriod parses a YYYY-MM (month) or YYYY-Qn (quarter) key.
func ParsePeriod(key string, t PeriodType) (Period, error) {
	var (
		year, month int
		err         error
	)
	switch t {
	case PeriodMonth:
		year, month, err = splitKey(key, "-", 12)
	case PeriodQuarter:
		var quarter int
		year, quarter, err = splitKey(key, "-Q", 4)
		month = (quarter-1)*3 + 1
	default:
		return Period{}, invalidPeriodType(t)
	}
	if err != nil {
		return Period{}, fmt.Errorf("%w %q for %s: %v", ErrInvalidPeriodKey, key, t, err)
	}
	return Period{Type: t, Start: time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)}, nil
}

func splitKey(key, sep string, maxPart int) (int, int, error) {
	yearStr, partStr, ok := strings.Cut(key, sep)
	if !ok {
		return 0, 0, fmt.Errorf("missing %q separator", sep)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 || len(yearStr) != 4 {
		return 0, 0, fmt.Errorf("bad year %q", yearStr)
	}
	part, err := strconv.Atoi(partStr)
	if err != nil || part < 1 || part > maxPart {
		return 0, 0, fmt.Errorf("bad period number %q", partStr)
	}
	return year, part, nil
}

// Key returns the canonical identifier of the period.
func (p Period) Key() string {
	if p.Type == PeriodQuarter {
		return fmt.Sprintf("%04d-Q%d", p.Start.Year(), (int(p.Start.Month())-1)/3+1)
	}
	return fmt.Sprintf("%04d-%02d", p.Start.Year(), int(p.Start.Month()))
}

func (p Period) String() string {
	return p.Key()
}

// Bounds returns the first and last instant of the period. The end is
// 23:59:59.999 on the last calendar day.
func (p Period) Bounds() (time.Time, time.Time) {
	end := p.Start.AddDate(0, p.Type.months(), 0).Add(-time.Millisecond)
	return p.Start, end
}

// Contains reports whether t falls within the period, both ends inclusive.
func (p Period) Contains(t time.Time) bool {
	start, end := p.Bounds()
	return !t.Before(start) && !t.After(end)
}

// Previous is the period immediately before p.
func (p Period) Previous() Period {
	return p.back(1)
}

// SamePeriodLastQuarter is three periods back: three months for a month,
// nine months for a quarter.
func (p Period) SamePeriodLastQuarter() Period {
	return p.back(3)
}

// SamePeriodLastYear is the same month or quarter one calendar year earlier.
func (p Period) SamePeriodLastYear() Period {
	return Period{Type: p.Type, Start: p.Start.AddDate(-1, 0, 0)}
}

// back steps n periods into the past. Start is always the first of a month,
// so month arithmetic never overflows into a neighbouring month.
func (p Period) back(n int) Period {
	return Period{Type: p.Type, Start: p.Start.AddDate(0, -n*p.Type.months(), 0)}
}

// PeriodKey returns the key of the period of type t containing date.
func PeriodKey(date time.Time, t PeriodType) string {
	return PeriodOf(date, t).Key()
}

// PeriodBounds returns the first and last instant of the period identified by key.
func PeriodBounds(key string, t PeriodType) (time.Time, time.Time, error) {
	p, err := ParsePeriod(key, t)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end := p.Bounds()
	return start, end, nil
}

// PreviousPeriod returns the key of the period immediately before key.
func PreviousPeriod(key string, t PeriodType) (string, error) {
	return shiftKey(key, t, Period.Previous)
}

// SamePeriodLastQuarter returns the key three periods before key.
func SamePeriodLastQuarter(key string, t PeriodType) (string, error) {
	return shiftKey(key, t, Period.SamePeriodLastQuarter)
}

// SamePeriodLastYear returns the key of the same period one year before key.
func SamePeriodLastYear(key string, t PeriodType) (string, error) {
	return shiftKey(key, t, Period.SamePeriodLastYear)
}

func shiftKey(key string, t PeriodType, shift func(Period) Period) (string, error) {
	p, err := ParsePeriod(key, t)
	if err != nil {
		return "", err
	}
	return shift(p).Key(), nil
}

func invalidPeriodType(t PeriodType) error {
	return fmt.Errorf("%w: %q", ErrInvalidPeriodType, t)
}
