package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common/security"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/policy"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

type contextKey string

const (
	verifiedCtxKey contextKey = "verified"
	claimsCtxKey   contextKey = "claims"
)

// unauthenticatedMsg is the only message a rejected token ever gets.
const unauthenticatedMsg = "invalid or missing token"

// Verifier looks for "Authorization: Bearer T" and records the verified
// claims, or nil, in the context. It never rejects a request;
// Authenticator enforces it per route group.
func Verifier(tokens *security.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := tokens.VerifyToken(jwtauth.TokenFromHeader(r))
			ctx := context.WithValue(r.Context(), verifiedCtxKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticator rejects the request unless Verifier found a valid
// token. Missing, malformed, badly signed and expired tokens all get the
// same 401.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := verifiedClaims(r.Context())
		if claims == nil {
			common.RespondWithError(w, http.StatusUnauthorized, unauthenticatedMsg)
			return
		}

		ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
		ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(logger.FieldUserID, claims.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly must run after Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			common.RespondWithError(w, http.StatusUnauthorized, unauthenticatedMsg)
			return
		}
		if !policy.IsAdmin(caller) {
			common.RespondWithError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the claims stored by Authenticator.
func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey).(*security.Claims)
	return claims, ok && claims != nil
}

// CallerFromContext returns the authenticated caller stored by Authenticator.
func CallerFromContext(ctx context.Context) (policy.Caller, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return policy.Caller{}, false
	}
	return claims.Caller(), true
}

// OptionalCaller identifies the caller on public routes. It returns nil
// when no valid token was sent.
func OptionalCaller(r *http.Request) *policy.Caller {
	claims := verifiedClaims(r.Context())
	if claims == nil {
		return nil
	}
	c := claims.Caller()
	return &c
}

func verifiedClaims(ctx context.Context) *security.Claims {
	claims, _ := ctx.Value(verifiedCtxKey).(*security.Claims)
	return claims
}
