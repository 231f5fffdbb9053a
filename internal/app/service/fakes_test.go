package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
	// cascade is wired to the expense fake so deletes behave like the SQL repo.
	cascade func(userID string) int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]model.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return common.Conflictf("email already registered")
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return common.ErrNotFound
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	if _, ok := r.users[id]; !ok {
		r.mu.Unlock()
		return 0, common.ErrNotFound
	}
	delete(r.users, id)
	r.mu.Unlock()
	if r.cascade != nil {
		return r.cascade(id), nil
	}
	return 0, nil
}

type memExpenseRepo struct {
	mu       sync.Mutex
	expenses map[string]model.Expense
	queries  int
}

func newMemExpenseRepo() *memExpenseRepo {
	return &memExpenseRepo{expenses: map[string]model.Expense{}}
}

func (r *memExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses[e.ID] = *e
	return nil
}

func (r *memExpenseRepo) FindByID(_ context.Context, id string) (*model.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &e, nil
}

func (r *memExpenseRepo) FindByUserAndDateRange(_ context.Context, userID string, from, to time.Time) ([]model.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++
	out := []model.Expense{}
	for _, e := range r.expenses {
		if e.UserID == userID && !e.ExpenseDate.Before(from) && e.ExpenseDate.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpenseDate.After(out[j].ExpenseDate) })
	return out, nil
}

func (r *memExpenseRepo) Update(_ context.Context, e *model.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.expenses[e.ID]; !ok {
		return common.ErrNotFound
	}
	r.expenses[e.ID] = *e
	return nil
}

func (r *memExpenseRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.expenses[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r *memExpenseRepo) deleteByUser(userID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.expenses {
		if e.UserID == userID {
			delete(r.expenses, id)
			n++
		}
	}
	return n
}

// denyLimiter refuses every attempt.
type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (bool, error) { return false, nil }
func (denyLimiter) Reset(context.Context, string) error         { return nil }
