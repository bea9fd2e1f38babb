package booking

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const staffUserKey contextKey = "staff_user_id"

// StaffClaims represents staff JWT token claims
type StaffClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenValidator implements JWT token validation for staff tokens
type TokenValidator struct {
	jwtSecret []byte
	issuer    string
}

// NewTokenValidator creates a new token validator
func NewTokenValidator(secret, issuer string) *TokenValidator {
	return &TokenValidator{
		jwtSecret: []byte(secret),
		issuer:    issuer,
	}
}

// ValidateToken validates a staff JWT token and returns its claims
func (tv *TokenValidator) ValidateToken(tokenString string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tv.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, fmt.Errorf("token expired")
	}

	if tv.issuer != "" && claims.Issuer != tv.issuer {
		return nil, fmt.Errorf("unexpected token issuer")
	}

	return claims, nil
}

// GenerateToken issues a staff token, used by the login flow and by tests
func (tv *TokenValidator) GenerateToken(userID, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &StaffClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tv.issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tv.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// staffAuthMiddleware guards staff routes with a Bearer token check and
// places the staff user ID in the request context for audit logging.
func (s *Service) staffAuthMiddleware(next http.Handler) http.Handler {
	validator := NewTokenValidator(s.config.JWT.SecretKey, s.config.JWT.Issuer)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.writeErrorResponse(w, http.StatusUnauthorized, "Authorization header required", nil)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			s.writeErrorResponse(w, http.StatusUnauthorized, "Bearer token required", nil)
			return
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			s.writeErrorResponse(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		ctx := context.WithValue(r.Context(), staffUserKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
