package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/api/middleware"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/app/report"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/app/service"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/policy"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	now            func() time.Time
}

func NewExpenseHandler(es *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: es, now: time.Now}
}

func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Post("/", h.createExpense)              // POST /api/expenses
	r.Get("/", h.listExpenses)                // GET /api/expenses?userId&month&year
	r.Get("/{expenseID}", h.getExpense)       // GET /api/expenses/{id}
	r.Put("/{expenseID}", h.updateExpense)    // PUT /api/expenses/{id}
	r.Delete("/{expenseID}", h.deleteExpense) // DELETE /api/expenses/{id}
}

func (h *ExpenseHandler) createExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req service.CreateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		respondError(w, r, common.Validationf("user_id, description and amount are required"))
		return
	}
	if !policy.CanAccessOwnResource(caller, req.UserID) {
		forbid(w, "you can only create expenses for your own account")
		return
	}

	expense, err := h.expenseService.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) listExpenses(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	userID := strings.TrimSpace(q.Get("userId"))
	if userID == "" {
		userID = caller.ID
	}
	if !policy.CanAccessOwnResource(caller, userID) {
		forbid(w, "you can only view your own expenses")
		return
	}

	period, err := report.ResolvePeriod(q.Get("month"), q.Get("year"), h.now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	expenses, err := h.expenseService.FindByUserAndDate(r.Context(), userID, period.Month, period.Year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) getExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	expense, err := h.expenseService.Get(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !policy.CanAccessOwnResource(caller, expense.UserID) {
		forbid(w, "you can only view your own expenses")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) updateExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "expenseID")
	existing, err := h.expenseService.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !policy.CanAccessOwnResource(caller, existing.UserID) {
		forbid(w, "you can only edit your own expenses")
		return
	}

	var req service.UpdateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	expense, err := h.expenseService.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "expenseID")
	existing, err := h.expenseService.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !policy.CanAccessOwnResource(caller, existing.UserID) {
		forbid(w, "you can only delete your own expenses")
		return
	}

	if err := h.expenseService.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}
