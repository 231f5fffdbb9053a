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

type ReportHandler struct {
	reportService *service.ReportService
	now           func() time.Time
}

func NewReportHandler(rs *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs, now: time.Now}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Get("/summary", h.summary)                // GET /api/reports/summary?userId&month&year
	r.Get("/by-type", h.byType)                 // GET /api/reports/by-type?userId&month&year
	r.Get("/monthly-history", h.monthlyHistory) // GET /api/reports/monthly-history?userId&year
}

// targetUser resolves the userId query parameter (defaulting to the
// caller) and applies the ownership rule. It writes the response and
// returns false when the request must stop.
func (h *ReportHandler) targetUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return "", false
	}
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		userID = caller.ID
	}
	if !policy.CanAccessOwnResource(caller, userID) {
		forbid(w, "you can only view your own reports")
		return "", false
	}
	return userID, true
}

func (h *ReportHandler) summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.targetUser(w, r)
	if !ok {
		return
	}
	period, err := report.ResolvePeriod(r.URL.Query().Get("month"), r.URL.Query().Get("year"), h.now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	summary, err := h.reportService.Summary(r.Context(), userID, period)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) byType(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.targetUser(w, r)
	if !ok {
		return
	}
	period, err := report.ResolvePeriod(r.URL.Query().Get("month"), r.URL.Query().Get("year"), h.now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	totals, err := h.reportService.ByType(r.Context(), userID, period)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, totals)
}

func (h *ReportHandler) monthlyHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.targetUser(w, r)
	if !ok {
		return
	}
	year, err := report.ResolveYear(r.URL.Query().Get("year"), h.now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	history, err := h.reportService.MonthlyHistory(r.Context(), userID, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, history)
}
