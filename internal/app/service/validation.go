package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// normalizeEmail lower-cases and trims an address, rejecting malformed ones.
func normalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", common.Validationf("email is required")
	}
	if !emailPattern.MatchString(e) {
		return "", common.Validationf("invalid email format")
	}
	return e, nil
}

// validID reports whether id could be a stored primary key.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// parseExpenseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// Plain dates are taken as midnight UTC.
func parseExpenseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, common.Validationf("expense_date must be YYYY-MM-DD or RFC 3339")
}

// cleanCategory trims a category and maps blank ones to nil.
func cleanCategory(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.TrimSpace(*c)
	if v == "" {
		return nil
	}
	return &v
}
