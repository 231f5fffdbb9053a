package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			err = fmt.Errorf("database ping: %w: %v", common.ErrServiceUnavailable, err)
			logger.FromContext(r.Context()).WarnContext(r.Context(), "health check failed", logger.FieldError, err)
			common.RespondWithJSON(w, common.HTTPStatusFromError(err), healthResponse{Status: "unavailable", Timestamp: time.Now().UTC()})
			return
		}
	}
	common.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "OK", Timestamp: time.Now().UTC()})
}
