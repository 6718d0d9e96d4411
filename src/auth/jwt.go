package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"yemenflix/src/cache"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token revoked")
)

type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 tokens. Revoked token ids are kept
// in the cache store until the token would have expired anyway.
type JWTManager struct {
	secret  []byte
	timeout time.Duration
	revoked cache.Store
	now     func() time.Time
}

func NewJWTManager(secret string, timeout time.Duration, revoked cache.Store) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	return &JWTManager{secret: []byte(secret), timeout: timeout, revoked: revoked, now: time.Now}, nil
}

func (m *JWTManager) GenerateToken(userID uint, username string, isAdmin bool) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.timeout)
	claims := &Claims{
		UserID:   userID,
		Username: username,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

func (m *JWTManager) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if m.revoked != nil && claims.ID != "" {
		if _, hit, err := m.revoked.Get(ctx, revokedKey(claims.ID)); err == nil && hit {
			return nil, ErrRevokedToken
		}
	}
	return claims, nil
}

// Revoke blocks the token id for the rest of its lifetime.
func (m *JWTManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.revoked == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Sub(m.now()); left > 0 {
			ttl = left
		}
	}
	return m.revoked.Set(ctx, revokedKey(claims.ID), []byte("1"), ttl)
}

func revokedKey(id string) string {
	return "auth:revoked:" + id
}
