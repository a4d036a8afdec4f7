package utils

import (
	"strings"
	"testing"
	"time"

	"account_service/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTUtil(t *testing.T, secret string) *JWTUtil {
	t.Helper()
	ju, err := NewJWTUtil(JWTConfig{Secret: secret, Issuer: "test", TTL: time.Hour})
	require.NoError(t, err)
	return ju
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := newTestJWTUtil(t, "secret")
	userID := 1
	role := model.RoleUser

	issued, err := jwtUtil.GenerateToken(userID, role)

	assert.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, time.Hour, issued.ExpiresAt.Sub(issued.IssuedAt))

	// Validate the token to ensure it's well-formed and contains correct claims
	claims, err := jwtUtil.ValidateToken(issued.Token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, role, claims.Role)
	assert.Equal(t, "1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, issued.ExpiresAt.Equal(claims.ExpiresAt.Time))
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_GenerateToken_DistinctPerCall(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	jwtUtil := newTestJWTUtil(t, "secret").WithClock(fixedClock(ts))

	first, err := jwtUtil.GenerateToken(7, model.RoleAdmin)
	require.NoError(t, err)
	second, err := jwtUtil.GenerateToken(7, model.RoleAdmin)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestJWTUtil_ValidateToken_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	base := newTestJWTUtil(t, "secret")
	issued, err := base.WithClock(fixedClock(issuedAt)).GenerateToken(3, model.RoleUser)
	require.NoError(t, err)

	before := base.WithClock(fixedClock(issued.ExpiresAt.Add(-time.Second)))
	_, err = before.ValidateToken(issued.Token)
	assert.NoError(t, err)

	after := base.WithClock(fixedClock(issued.ExpiresAt.Add(time.Second)))
	_, err = after.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTUtil_ValidateToken_Leeway(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ju, err := NewJWTUtil(JWTConfig{Secret: "secret", TTL: time.Minute, Leeway: 30 * time.Second})
	require.NoError(t, err)
	issued, err := ju.WithClock(fixedClock(issuedAt)).GenerateToken(3, model.RoleUser)
	require.NoError(t, err)

	_, err = ju.WithClock(fixedClock(issued.ExpiresAt.Add(10 * time.Second))).ValidateToken(issued.Token)
	assert.NoError(t, err)

	_, err = ju.WithClock(fixedClock(issued.ExpiresAt.Add(time.Minute))).ValidateToken(issued.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := newTestJWTUtil(t, "secret")

	_, err := jwtUtil.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = jwtUtil.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTUtil_ValidateToken_Tampered(t *testing.T) {
	jwtUtil := newTestJWTUtil(t, "secret")
	issued, err := jwtUtil.GenerateToken(1, model.RoleUser)
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID: 1,
		Role:   model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	// Elevated payload spliced onto the original signature.
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = jwtUtil.ValidateToken(spliced)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := newTestJWTUtil(t, "secret1")
	jwtUtil2 := newTestJWTUtil(t, "secret2")

	issued, _ := jwtUtil1.GenerateToken(1, model.RoleUser)

	_, err := jwtUtil2.ValidateToken(issued.Token)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_WrongIssuer(t *testing.T) {
	other, err := NewJWTUtil(JWTConfig{Secret: "secret", Issuer: "elsewhere", TTL: time.Hour})
	require.NoError(t, err)
	issued, err := other.GenerateToken(1, model.RoleUser)
	require.NoError(t, err)

	_, err = newTestJWTUtil(t, "secret").ValidateToken(issued.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := newTestJWTUtil(t, "secret")
	// Create a token with a different signing method (e.g., HS384 instead of HS256)
	claims := &JWTClaims{
		UserID: 1,
		Role:   model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	// Sign with the same secret, as the key type is compatible for HMAC algorithms
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTUtil_ValidateToken_MissingExpiry(t *testing.T) {
	jwtUtil := newTestJWTUtil(t, "secret")
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:           1,
		Role:             model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "test"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = jwtUtil.ValidateToken(tokenString)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}

func TestJWTUtil_ValidateToken_UnknownRole(t *testing.T) {
	jwtUtil := newTestJWTUtil(t, "secret")
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID: 1,
		Role:   model.Role("ROOT"),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = jwtUtil.ValidateToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTUtil_InvalidConfig(t *testing.T) {
	_, err := NewJWTUtil(JWTConfig{TTL: time.Hour})
	assert.Error(t, err)
	_, err = NewJWTUtil(JWTConfig{Secret: "s"})
	assert.Error(t, err)
	_, err = NewJWTUtil(JWTConfig{Secret: "s", TTL: time.Hour, Leeway: -time.Second})
	assert.Error(t, err)
}
