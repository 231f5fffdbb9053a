// Package report turns a month of expenses into the totals shown on the
// dashboard. Everything here is pure: callers fetch the rows.
package report

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
)

// Uncategorized is the bucket for expenses without a category.
const Uncategorized = "Sem categoria"

var hundred = decimal.NewFromInt(100)

// TypeTotals holds one sum per expense type.
type TypeTotals struct {
	CreditCard model.Money `json:"credit_card"`
	Monthly    model.Money `json:"monthly"`
	PixDebit   model.Money `json:"pix_debit"`
}

// Total is the sum of the three buckets.
func (t TypeTotals) Total() model.Money {
	return model.NewMoney(t.CreditCard.Add(t.Monthly.Decimal).Add(t.PixDebit.Decimal))
}

// Rounded rounds every bucket to cents.
func (t TypeTotals) Rounded() TypeTotals {
	return TypeTotals{
		CreditCard: t.CreditCard.Rounded(),
		Monthly:    t.Monthly.Rounded(),
		PixDebit:   t.PixDebit.Rounded(),
	}
}

type UserInfo struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	GrossSalary model.Money `json:"gross_salary"`
}

type TypeSummary struct {
	CreditCardTotal model.Money `json:"credit_card_total"`
	MonthlyTotal    model.Money `json:"monthly_total"`
	PixDebitTotal   model.Money `json:"pix_debit_total"`
	TotalExpenses   model.Money `json:"total_expenses"`
}

type Comparison struct {
	GrossSalary         model.Money `json:"gross_salary"`
	TotalExpenses       model.Money `json:"total_expenses"`
	Remaining           model.Money `json:"remaining"`
	PercentageCommitted model.Money `json:"percentage_committed"`
}

type CategoryItem struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Amount      model.Money       `json:"amount"`
	ExpenseType model.ExpenseType `json:"expense_type"`
	ExpenseDate time.Time         `json:"expense_date"`
}

type CategoryGroup struct {
	Slug  string         `json:"slug"`
	Total model.Money    `json:"total"`
	Count int            `json:"count"`
	Items []CategoryItem `json:"items"`
}

// Summary is the monthly report for one user.
type Summary struct {
	Period        Period                    `json:"period"`
	User          UserInfo                  `json:"user"`
	Summary       TypeSummary               `json:"summary"`
	Comparison    Comparison                `json:"comparison"`
	ByCategory    map[string]*CategoryGroup `json:"by_category"`
	ExpensesCount int                       `json:"expenses_count"`
}

// MonthTotal is one entry of the yearly history.
type MonthTotal struct {
	Month int         `json:"month"`
	Total model.Money `json:"total"`
	Count int         `json:"count"`
}

// SumByType partitions expenses by type and sums each bucket at full
// precision. Rows with an unknown type are ignored.
func SumByType(expenses []model.Expense) TypeTotals {
	var t TypeTotals
	for i := range expenses {
		amount := expenses[i].Amount.Decimal
		switch expenses[i].ExpenseType {
		case model.ExpenseTypeCreditCard:
			t.CreditCard.Decimal = t.CreditCard.Add(amount)
		case model.ExpenseTypeMonthly:
			t.Monthly.Decimal = t.Monthly.Add(amount)
		case model.ExpenseTypePixDebit:
			t.PixDebit.Decimal = t.PixDebit.Add(amount)
		}
	}
	return t
}

// PercentageCommitted returns total / salary * 100, or zero when the
// salary is not positive.
func PercentageCommitted(total, grossSalary model.Money) model.Money {
	if !grossSalary.IsPositive() {
		return model.Money{}
	}
	return model.NewMoney(total.Div(grossSalary.Decimal).Mul(hundred))
}

// GroupByCategory buckets expenses by category label, keeping the input
// order inside each bucket.
func GroupByCategory(expenses []model.Expense) map[string]*CategoryGroup {
	groups := make(map[string]*CategoryGroup)
	for i := range expenses {
		e := &expenses[i]
		label := e.CategoryLabel()
		if label == "" {
			label = Uncategorized
		}
		g, ok := groups[label]
		if !ok {
			g = &CategoryGroup{Slug: slug.Make(label), Items: []CategoryItem{}}
			groups[label] = g
		}
		g.Total.Decimal = g.Total.Add(e.Amount.Decimal)
		g.Count++
		g.Items = append(g.Items, CategoryItem{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount,
			ExpenseType: e.ExpenseType,
			ExpenseDate: e.ExpenseDate,
		})
	}
	for _, g := range groups {
		g.Total = g.Total.Rounded()
	}
	return groups
}

// Summarize builds the monthly report for user from that month's expenses.
func Summarize(period Period, user *model.User, expenses []model.Expense) *Summary {
	byType := SumByType(expenses)
	total := byType.Total()
	remaining := model.NewMoney(user.GrossSalary.Sub(total.Decimal))

	return &Summary{
		Period: period,
		User: UserInfo{
			ID:          user.ID,
			Name:        user.Name,
			GrossSalary: user.GrossSalary.Rounded(),
		},
		Summary: TypeSummary{
			CreditCardTotal: byType.CreditCard.Rounded(),
			MonthlyTotal:    byType.Monthly.Rounded(),
			PixDebitTotal:   byType.PixDebit.Rounded(),
			TotalExpenses:   total.Rounded(),
		},
		Comparison: Comparison{
			GrossSalary:         user.GrossSalary.Rounded(),
			TotalExpenses:       total.Rounded(),
			Remaining:           remaining.Rounded(),
			PercentageCommitted: PercentageCommitted(total, user.GrossSalary).Rounded(),
		},
		ByCategory:    GroupByCategory(expenses),
		ExpensesCount: len(expenses),
	}
}

// MonthTotalOf sums one month's expenses regardless of type.
func MonthTotalOf(month int, expenses []model.Expense) MonthTotal {
	var total decimal.Decimal
	for i := range expenses {
		total = total.Add(expenses[i].Amount.Decimal)
	}
	return MonthTotal{Month: month, Total: model.NewMoney(total).Rounded(), Count: len(expenses)}
}
