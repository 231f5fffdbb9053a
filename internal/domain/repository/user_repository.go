package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/database"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	// Delete removes the user together with every expense they own and
	// returns how many expenses went with them.
	Delete(ctx context.Context, id string) (int64, error)
}

type sqlUserRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLUserRepository(db *sql.DB, dialect database.Dialect) UserRepository {
	return &sqlUserRepository{db: db, dialect: dialect}
}

const userColumns = `id, name, email, password, gross_salary, role, created_at`

func (r *sqlUserRepository) Create(ctx context.Context, user *model.User) error {
	query := r.dialect.Rebind(`INSERT INTO users (` + userColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.HashedPassword, user.GrossSalary, string(user.Role), user.CreatedAt.UTC())
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("sqlUserRepository.Create: %w", common.Conflictf("email already registered"))
		}
		return fmt.Errorf("sqlUserRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := r.dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *sqlUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := r.dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *sqlUserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlUserRepository.List: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlUserRepository.List scan: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlUserRepository.List rows: %w", err)
	}
	return users, nil
}

func (r *sqlUserRepository) Update(ctx context.Context, user *model.User) error {
	query := r.dialect.Rebind(`UPDATE users SET name = ?, gross_salary = ?, role = ?, password = ?
	          WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, user.Name, user.GrossSalary, string(user.Role), user.HashedPassword, user.ID)
	if err != nil {
		return fmt.Errorf("sqlUserRepository.Update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *sqlUserRepository) Delete(ctx context.Context, id string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlUserRepository.Delete begin: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	// Expenses go first so the delete works even where FK cascades are off.
	res, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM expenses WHERE user_id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("sqlUserRepository.Delete expenses: %w", err)
	}
	removed, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("sqlUserRepository.Delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, common.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlUserRepository.Delete commit: %w", err)
	}
	return removed, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	var role string
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.GrossSalary, &role, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
