package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/repository"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

type ExpenseService struct {
	expenseRepo repository.ExpenseRepository
	userRepo    repository.UserRepository
	log         *logger.Logger
	now         func() time.Time
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	userRepo repository.UserRepository,
	log *logger.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		log:         log.WithComponent(logger.ComponentExpense),
		now:         time.Now,
	}
}

type CreateExpenseRequest struct {
	UserID      string       `json:"user_id"`
	Description string       `json:"description"`
	Amount      *model.Money `json:"amount"`
	ExpenseType string       `json:"expense_type,omitempty"` // defaults to PIX_DEBIT
	Category    *string      `json:"category,omitempty"`
	ExpenseDate *string      `json:"expense_date,omitempty"` // defaults to now
}

// UpdateExpenseRequest is a partial update: nil fields are left alone and
// an empty category clears it.
type UpdateExpenseRequest struct {
	Description *string      `json:"description,omitempty"`
	Amount      *model.Money `json:"amount,omitempty"`
	ExpenseType *string      `json:"expense_type,omitempty"`
	Category    *string      `json:"category,omitempty"`
	ExpenseDate *string      `json:"expense_date,omitempty"`
}

func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*model.Expense, error) {
	description := strings.TrimSpace(req.Description)
	if strings.TrimSpace(req.UserID) == "" || description == "" || req.Amount == nil {
		return nil, common.Validationf("user_id, description and amount are required")
	}
	if req.Amount.IsNegative() {
		return nil, common.Validationf("amount must not be negative")
	}

	expenseType := model.ExpenseTypePixDebit
	if t := strings.TrimSpace(req.ExpenseType); t != "" {
		expenseType = model.ExpenseType(t)
		if !expenseType.Valid() {
			return nil, invalidExpenseType()
		}
	}

	now := s.now().UTC()
	expenseDate := now
	if req.ExpenseDate != nil && strings.TrimSpace(*req.ExpenseDate) != "" {
		d, err := parseExpenseDate(*req.ExpenseDate)
		if err != nil {
			return nil, err
		}
		expenseDate = d
	}

	if err := s.ensureUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	expense := &model.Expense{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Description: description,
		Amount:      *req.Amount,
		ExpenseType: expenseType,
		Category:    cleanCategory(req.Category),
		ExpenseDate: expenseDate,
		CreatedAt:   now,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.log.InfoContext(ctx, "expense created",
		logger.FieldOperation, logger.OpCreate,
		logger.FieldExpenseID, expense.ID,
		logger.FieldUserID, expense.UserID,
	)
	return expense, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (*model.Expense, error) {
	if !validID(id) {
		return nil, common.NotFoundf("expense not found")
	}
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("expense not found")
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// FindByUserAndDate lists the user's expenses for one calendar month,
// newest first.
func (s *ExpenseService) FindByUserAndDate(ctx context.Context, userID string, month, year int) ([]model.Expense, error) {
	if month < 1 || month > 12 {
		return nil, common.Validationf("month must be between 1 and 12")
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	from, to := repository.MonthRange(month, year)
	expenses, err := s.expenseRepo.FindByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Update(ctx context.Context, id string, req UpdateExpenseRequest) (*model.Expense, error) {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		if d == "" {
			return nil, common.Validationf("description must not be empty")
		}
		expense.Description = d
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, common.Validationf("amount must not be negative")
		}
		expense.Amount = *req.Amount
	}
	if req.ExpenseType != nil {
		t := model.ExpenseType(strings.TrimSpace(*req.ExpenseType))
		if !t.Valid() {
			return nil, invalidExpenseType()
		}
		expense.ExpenseType = t
	}
	if req.Category != nil {
		expense.Category = cleanCategory(req.Category)
	}
	// A blank date keeps the stored one.
	if req.ExpenseDate != nil && strings.TrimSpace(*req.ExpenseDate) != "" {
		d, err := parseExpenseDate(*req.ExpenseDate)
		if err != nil {
			return nil, err
		}
		expense.ExpenseDate = d
	}

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("expense not found")
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	s.log.InfoContext(ctx, "expense updated", logger.FieldOperation, logger.OpUpdate, logger.FieldExpenseID, expense.ID)
	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.NotFoundf("expense not found")
	}
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NotFoundf("expense not found")
		}
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	s.log.InfoContext(ctx, "expense deleted", logger.FieldOperation, logger.OpDelete, logger.FieldExpenseID, id)
	return nil
}

func (s *ExpenseService) ensureUser(ctx context.Context, userID string) error {
	if !validID(userID) {
		return common.NotFoundf("user not found")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NotFoundf("user not found")
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	return nil
}

func invalidExpenseType() error {
	names := make([]string, len(model.ExpenseTypes))
	for i, t := range model.ExpenseTypes {
		names[i] = string(t)
	}
	return common.Validationf("expense_type must be one of %s", strings.Join(names, ", "))
}
