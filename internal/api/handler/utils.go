package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/api/middleware"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/policy"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.Validationf("request body is required")
		}
		return common.Errorf("invalid request payload: %v: %w", err, common.ErrBadRequest)
	}
	return nil
}

// respondError writes err as JSON and logs it when it is a server fault.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if status := common.HTTPStatusFromError(err); status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			logger.FieldPath, r.URL.Path,
			logger.FieldError, err,
		)
	}
	common.RespondWithDomainError(w, err)
}

// requireCaller fetches the caller set by the Authenticator middleware.
func requireCaller(w http.ResponseWriter, r *http.Request) (policy.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "missing user context")
	}
	return caller, ok
}

// forbid answers 403 with msg.
func forbid(w http.ResponseWriter, msg string) {
	common.RespondWithError(w, http.StatusForbidden, msg)
}
