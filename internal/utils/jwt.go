package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"account_service/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification
var ErrInvalidToken = errors.New("invalid token")

// JWTClaims custom claims for JWT
type JWTClaims struct {
	UserID int        `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token with the instants embedded in it
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTConfig configures a JWTUtil
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	leeway    time.Duration
	now       func() time.Time
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(cfg JWTConfig) (*JWTUtil, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}
	if cfg.Leeway < 0 {
		return nil, fmt.Errorf("token leeway must not be negative, got %s", cfg.Leeway)
	}
	return &JWTUtil{
		secretKey: []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		ttl:       cfg.TTL,
		leeway:    cfg.Leeway,
		now:       time.Now,
	}, nil
}

// WithClock returns a copy of ju that reads time from now. Used by tests.
func (ju *JWTUtil) WithClock(now func() time.Time) *JWTUtil {
	c := *ju
	c.now = now
	return &c
}

// TTL returns the lifetime of issued tokens
func (ju *JWTUtil) TTL() time.Duration {
	return ju.ttl
}

// GenerateToken generates a new JWT token
func (ju *JWTUtil) GenerateToken(userID int, role model.Role) (IssuedToken, error) {
	// NumericDate has second precision; truncate so the returned instants match the token.
	issuedAt := ju.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ju.ttl)

	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ju.issuer,
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return IssuedToken{Token: tokenString, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// ValidateToken validates the JWT token
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(ju.leeway),
		jwt.WithTimeFunc(ju.now),
	}
	if ju.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ju.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}
	return claims, nil
}
