package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/app/report"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/repository"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

// historyConcurrency bounds the month queries in flight for one history.
const historyConcurrency = 4

type ReportService struct {
	expenseRepo repository.ExpenseRepository
	userRepo    repository.UserRepository
	log         *logger.Logger
}

func NewReportService(
	expenseRepo repository.ExpenseRepository,
	userRepo repository.UserRepository,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		log:         log.WithComponent(logger.ComponentReport),
	}
}

func (s *ReportService) Summary(ctx context.Context, userID string, period report.Period) (*report.Summary, error) {
	if !period.Valid() {
		return nil, common.Validationf("invalid report period")
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.month(ctx, userID, period.Month, period.Year)
	if err != nil {
		return nil, err
	}
	return report.Summarize(period, user, expenses), nil
}

func (s *ReportService) ByType(ctx context.Context, userID string, period report.Period) (*report.TypeTotals, error) {
	if !period.Valid() {
		return nil, common.Validationf("invalid report period")
	}
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	expenses, err := s.month(ctx, userID, period.Month, period.Year)
	if err != nil {
		return nil, err
	}
	totals := report.SumByType(expenses).Rounded()
	return &totals, nil
}

// MonthlyHistory returns twelve entries, January first. Months are queried
// concurrently; each goroutine owns one slot of the result.
func (s *ReportService) MonthlyHistory(ctx context.Context, userID string, year int) ([]report.MonthTotal, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	history := make([]report.MonthTotal, 12)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyConcurrency)
	for i := range history {
		month := i + 1
		g.Go(func() error {
			expenses, err := s.month(gctx, userID, month, year)
			if err != nil {
				return err
			}
			history[i] = report.MonthTotalOf(month, expenses)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.ErrorContext(ctx, "monthly history failed", logger.FieldUserID, userID, logger.FieldYear, year, logger.FieldError, err)
		return nil, err
	}
	return history, nil
}

func (s *ReportService) user(ctx context.Context, userID string) (*model.User, error) {
	if !validID(userID) {
		return nil, common.NotFoundf("user not found")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func (s *ReportService) month(ctx context.Context, userID string, month, year int) ([]model.Expense, error) {
	from, to := repository.MonthRange(month, year)
	expenses, err := s.expenseRepo.FindByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for %04d-%02d: %w", year, month, err)
	}
	s.log.DebugContext(ctx, "month loaded",
		logger.FieldUserID, userID, logger.FieldYear, year, logger.FieldMonth, month, "expenses", len(expenses))
	return expenses, nil
}
