package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/database"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, id string) (*model.Expense, error)
	// FindByUserAndDateRange returns the user's expenses dated in [from, to),
	// newest first.
	FindByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]model.Expense, error)
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id string) error
}

// MonthRange returns the half-open UTC interval covering the whole month.
func MonthRange(month, year int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

type sqlExpenseRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLExpenseRepository(db *sql.DB, dialect database.Dialect) ExpenseRepository {
	return &sqlExpenseRepository{db: db, dialect: dialect}
}

const expenseColumns = `id, user_id, description, amount, expense_type, category, expense_date, created_at`

func (r *sqlExpenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	query := r.dialect.Rebind(`INSERT INTO expenses (` + expenseColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		expense.ID, expense.UserID, expense.Description, expense.Amount, string(expense.ExpenseType),
		nullableString(expense.Category), expense.ExpenseDate.UTC(), expense.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlExpenseRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlExpenseRepository) FindByID(ctx context.Context, id string) (*model.Expense, error) {
	query := r.dialect.Rebind(`SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`)
	expense, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlExpenseRepository.FindByID: %w", err)
	}
	return expense, nil
}

func (r *sqlExpenseRepository) FindByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]model.Expense, error) {
	query := r.dialect.Rebind(`SELECT ` + expenseColumns + ` FROM expenses
	          WHERE user_id = ? AND expense_date >= ? AND expense_date < ?
	          ORDER BY expense_date DESC, created_at DESC`)
	rows, err := r.db.QueryContext(ctx, query, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("sqlExpenseRepository.FindByUserAndDateRange: %w", err)
	}
	defer rows.Close()

	expenses := []model.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlExpenseRepository.FindByUserAndDateRange scan: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlExpenseRepository.FindByUserAndDateRange rows: %w", err)
	}
	return expenses, nil
}

func (r *sqlExpenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	query := r.dialect.Rebind(`UPDATE expenses
	          SET description = ?, amount = ?, expense_type = ?, category = ?, expense_date = ?
	          WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		expense.Description, expense.Amount, string(expense.ExpenseType),
		nullableString(expense.Category), expense.ExpenseDate.UTC(), expense.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlExpenseRepository.Update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *sqlExpenseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM expenses WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("sqlExpenseRepository.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanExpense(row rowScanner) (*model.Expense, error) {
	expense := &model.Expense{}
	var (
		expenseType string
		category    sql.NullString
	)
	err := row.Scan(
		&expense.ID, &expense.UserID, &expense.Description, &expense.Amount, &expenseType,
		&category, &expense.ExpenseDate, &expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.ExpenseType = model.ExpenseType(expenseType)
	if category.Valid && category.String != "" {
		c := category.String
		expense.Category = &c
	}
	expense.ExpenseDate = expense.ExpenseDate.UTC()
	expense.CreatedAt = expense.CreatedAt.UTC()
	return expense, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
