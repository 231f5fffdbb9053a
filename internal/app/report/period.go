package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
)

const (
	minYear = 1900
	maxYear = 9999
)

// Period is a calendar month.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// ResolvePeriod parses optional month/year query values. Missing values
// fall back to the current UTC month and year.
func ResolvePeriod(month, year string, now time.Time) (Period, error) {
	now = now.UTC()
	p := Period{Month: int(now.Month()), Year: now.Year()}

	if m := strings.TrimSpace(month); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil || v < 1 || v > 12 {
			return Period{}, common.Validationf("month must be between 1 and 12")
		}
		p.Month = v
	}

	y, err := ResolveYear(year, now)
	if err != nil {
		return Period{}, err
	}
	p.Year = y
	return p, nil
}

// ResolveYear parses an optional year, defaulting to the current UTC year.
func ResolveYear(year string, now time.Time) (int, error) {
	y := strings.TrimSpace(year)
	if y == "" {
		return now.UTC().Year(), nil
	}
	v, err := strconv.Atoi(y)
	if err != nil || v < minYear || v > maxYear {
		return 0, common.Validationf("year must be between %d and %d", minYear, maxYear)
	}
	return v, nil
}

// Valid reports whether the period names a real month.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= minYear && p.Year <= maxYear
}
