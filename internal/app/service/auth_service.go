package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common/security"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/policy"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/repository"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

var errInvalidCredentials = common.Unauthorizedf("invalid email or password")

type AuthService struct {
	userRepo repository.UserRepository
	users    *UserService
	tokens   *security.TokenIssuer
	limiter  security.AttemptLimiter
	log      *logger.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	users *UserService,
	tokens *security.TokenIssuer,
	limiter security.AttemptLimiter,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		users:    users,
		tokens:   tokens,
		limiter:  limiter,
		log:      log.WithComponent(logger.ComponentAuth),
	}
}

type RegisterRequest struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Password    string       `json:"password"`
	GrossSalary *model.Money `json:"gross_salary"`
	Role        string       `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates an account with a password. caller is nil for anonymous
// sign-ups, which may only create normal accounts.
func (s *AuthService) Register(ctx context.Context, caller *policy.Caller, req RegisterRequest) (*model.User, error) {
	if req.Password == "" {
		return nil, common.Validationf("name, email, password and gross_salary are required")
	}

	role, err := model.ParseRole(strings.TrimSpace(req.Role))
	if err != nil {
		return nil, common.Validationf("role must be admin or normal")
	}
	var who policy.Caller
	if caller != nil {
		who = *caller
	}
	if !policy.CanAssignRole(who, role) {
		return nil, common.Forbiddenf("only admins can create admin accounts")
	}

	user, err := s.users.Create(ctx, CreateUserRequest{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		GrossSalary: req.GrossSalary,
		Role:        string(role),
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user registered", logger.FieldOperation, logger.OpRegister, logger.FieldUserID, user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, common.Validationf("email and password are required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		if err != nil {
			// Limiter outages must not lock everyone out.
			s.log.WarnContext(ctx, "login limiter unavailable", logger.FieldError, err)
		} else if !allowed {
			s.log.WarnContext(ctx, "login rate limited", logger.FieldOperation, logger.OpLogin, logger.FieldEmail, email)
			return nil, fmt.Errorf("login %s: %w", email, common.ErrTooManyRequests)
		}
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			security.RejectPassword(req.Password)
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.WarnContext(ctx, "failed to reset login attempts", logger.FieldError, err)
		}
	}
	s.log.InfoContext(ctx, "user logged in", logger.FieldOperation, logger.OpLogin, logger.FieldUserID, user.ID)
	return &AuthResponse{Token: token, User: user}, nil
}

// Me returns the identity carried by an already verified token.
func (s *AuthService) Me(claims *security.Claims) (*security.Claims, error) {
	if claims == nil {
		return nil, common.ErrUnauthorized
	}
	return claims, nil
}
