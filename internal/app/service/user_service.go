package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common/security"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/repository"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

// maxPasswordLen is bcrypt's input limit.
const maxPasswordLen = 72

type UserService struct {
	userRepo repository.UserRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository, log *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      log.WithComponent(logger.ComponentUser),
		now:      time.Now,
	}
}

type CreateUserRequest struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Password    string       `json:"password,omitempty"` // optional for admin-created accounts
	GrossSalary *model.Money `json:"gross_salary"`
	Role        string       `json:"role,omitempty"`
}

type UpdateUserRequest struct {
	Name        *string      `json:"name,omitempty"`
	GrossSalary *model.Money `json:"gross_salary,omitempty"`
}

func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Email) == "" || req.GrossSalary == nil {
		return nil, common.Validationf("name, email and gross_salary are required")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if req.GrossSalary.IsNegative() {
		return nil, common.Validationf("gross_salary must not be negative")
	}
	role, err := model.ParseRole(strings.TrimSpace(req.Role))
	if err != nil {
		return nil, common.Validationf("role must be admin or normal")
	}

	if len(req.Password) > maxPasswordLen {
		return nil, common.Validationf("password must be at most %d bytes", maxPasswordLen)
	}
	password := req.Password
	if password == "" {
		// No password means the account cannot log in until one is set.
		password = security.RandomPassword()
	}
	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Best-effort pre-check; the unique constraint settles races.
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, common.Conflictf("email already registered")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		GrossSalary:    *req.GrossSalary,
		Role:           role,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.InfoContext(ctx, "user created", logger.FieldOperation, logger.OpCreate, logger.FieldUserID, user.ID)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, common.NotFoundf("user not found")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update changes only the fields present in req.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, common.Validationf("name must not be empty")
		}
		user.Name = name
	}
	if req.GrossSalary != nil {
		if req.GrossSalary.IsNegative() {
			return nil, common.Validationf("gross_salary must not be negative")
		}
		user.GrossSalary = *req.GrossSalary
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.log.InfoContext(ctx, "user updated", logger.FieldOperation, logger.OpUpdate, logger.FieldUserID, user.ID)
	return user, nil
}

// Delete removes the user and every expense they own.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.NotFoundf("user not found")
	}
	removed, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NotFoundf("user not found")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.log.InfoContext(ctx, "user deleted",
		logger.FieldOperation, logger.OpDelete,
		logger.FieldUserID, id,
		"expenses_removed", removed,
	)
	return nil
}
