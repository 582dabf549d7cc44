package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

func signToken(t *testing.T, secret string, claims *models.AuthClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateTokenAcceptsSignedClaims(t *testing.T) {
	svc := NewAuthService(AuthConfig{TokenSecret: "secret"}, zap.NewNop())
	token := signToken(t, "secret", &models.AuthClaims{
		UserID: "u1",
		Email:  "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService(AuthConfig{TokenSecret: "secret"}, zap.NewNop())
	token := signToken(t, "otro", &models.AuthClaims{UserID: "u1"})

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(AuthConfig{TokenSecret: "secret"}, zap.NewNop())
	token := signToken(t, "secret", &models.AuthClaims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestValidateTokenRequiresUserID(t *testing.T) {
	svc := NewAuthService(AuthConfig{TokenSecret: "secret"}, zap.NewNop())
	token := signToken(t, "secret", &models.AuthClaims{Email: "ana@example.com"})

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestValidateTokenChecksIssuerWhenConfigured(t *testing.T) {
	svc := NewAuthService(AuthConfig{TokenSecret: "secret", Issuer: "colegio"}, zap.NewNop())
	token := signToken(t, "secret", &models.AuthClaims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "otro"},
	})

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}
