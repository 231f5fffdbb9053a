package security

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/policy"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 24 * time.Hour

const (
	claimUserID = "userId"
	claimEmail  = "email"
	claimRole   = "role"
	claimIat    = "iat"
	claimExp    = "exp"
)

// Claims is the verified payload of a session token.
type Claims struct {
	UserID    string     `json:"userId"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	IssuedAt  int64      `json:"iat"`
	ExpiresAt int64      `json:"exp"`
}

// Caller converts the claims into the identity used by access checks.
func (c *Claims) Caller() policy.Caller {
	return policy.Caller{ID: c.UserID, Email: c.Email, Role: c.Role}
}

// TokenIssuer signs and verifies HS256 session tokens with one server secret.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{auth: jwtauth.New("HS256", secret, nil)}
}

func (ti *TokenIssuer) IssueToken(userID, email string, role model.Role) (string, error) {
	claims := jwt.MapClaims{
		claimUserID: userID,
		claimEmail:  email,
		claimRole:   string(role),
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, TokenTTL)
	_, tokenString, err := ti.auth.Encode(claims)
	return tokenString, err
}

// VerifyToken returns nil for any token that is malformed, badly signed,
// expired or missing a claim. Callers must not try to tell these apart.
func (ti *TokenIssuer) VerifyToken(tokenString string) *Claims {
	if tokenString == "" {
		return nil
	}
	token, err := jwtauth.VerifyToken(ti.auth, tokenString)
	if err != nil || token == nil {
		return nil
	}
	raw, err := token.AsMap(context.Background())
	if err != nil {
		return nil
	}
	claims, err := ClaimsFromMap(raw)
	if err != nil {
		return nil
	}
	return claims
}

// ClaimsFromMap extracts Claims from a decoded claim set.
func ClaimsFromMap(raw map[string]interface{}) (*Claims, error) {
	userID, ok := raw[claimUserID].(string)
	if !ok || userID == "" {
		return nil, errors.New("userId claim is missing or not a string")
	}
	email, _ := raw[claimEmail].(string)
	roleStr, ok := raw[claimRole].(string)
	if !ok {
		return nil, errors.New("role claim is missing or not a string")
	}
	role := model.Role(roleStr)
	if !role.Valid() {
		return nil, errors.New("role claim is not a known role")
	}
	return &Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		IssuedAt:  unixClaim(raw[claimIat]),
		ExpiresAt: unixClaim(raw[claimExp]),
	}, nil
}

func unixClaim(v interface{}) int64 {
	switch t := v.(type) {
	case time.Time:
		return t.Unix()
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	}
	return 0
}
