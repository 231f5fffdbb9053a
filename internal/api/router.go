package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/api/handler"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/api/middleware"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/app/service"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common/security"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

// Services bundles what the router needs to build its handlers.
type Services struct {
	Auth    *service.AuthService
	User    *service.UserService
	Expense *service.ExpenseService
	Report  *service.ReportService
}

func NewRouter(
	svc Services,
	tokens *security.TokenIssuer,
	db *sql.DB,
	log *logger.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(logger.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Use(middleware.Verifier(tokens))

	var pinger handler.Pinger
	if db != nil {
		pinger = db
	}
	r.Method(http.MethodGet, "/health", handler.NewHealthHandler(pinger))

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", handler.NewAuthHandler(svc.Auth).RegisterRoutes)
		api.Route("/users", handler.NewUserHandler(svc.User).RegisterRoutes)
		api.Route("/expenses", handler.NewExpenseHandler(svc.Expense).RegisterRoutes)
		api.Route("/reports", handler.NewReportHandler(svc.Report).RegisterRoutes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
