package model

import "time"

type ExpenseType string

const (
	ExpenseTypeCreditCard ExpenseType = "CREDIT_CARD"
	ExpenseTypeMonthly    ExpenseType = "MONTHLY"
	ExpenseTypePixDebit   ExpenseType = "PIX_DEBIT"
)

// ExpenseTypes lists every accepted expense type in display order.
var ExpenseTypes = []ExpenseType{ExpenseTypeCreditCard, ExpenseTypeMonthly, ExpenseTypePixDebit}

func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseTypeCreditCard, ExpenseTypeMonthly, ExpenseTypePixDebit:
		return true
	}
	return false
}

type Expense struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Description string      `json:"description"`
	Amount      Money       `json:"amount"`
	ExpenseType ExpenseType `json:"expense_type"`
	Category    *string     `json:"category"` // nil when uncategorized
	ExpenseDate time.Time   `json:"expense_date"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CategoryLabel returns the category or "" when none is set.
func (e *Expense) CategoryLabel() string {
	if e.Category == nil {
		return ""
	}
	return *e.Category
}
