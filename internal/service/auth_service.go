package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

// AuthConfig defines configuration for token validation.
type AuthConfig struct {
	TokenSecret string
	Issuer      string
}

// AuthService validates access tokens minted by the external identity
// provider. It never issues tokens and never stores credentials.
type AuthService struct {
	config AuthConfig
	logger *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(config AuthConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{config: config, logger: logger}
}

// ValidateToken parses and verifies an HS256 access token and returns its
// claims. Any failure maps to an unauthorized error.
func (s *AuthService) ValidateToken(tokenString string) (*models.AuthClaims, error) {
	claims := &models.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		s.logger.Debug("token validation failed", zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}

	if s.config.Issuer != "" {
		issuer, err := claims.GetIssuer()
		if err != nil || issuer != s.config.Issuer {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
		}
	}

	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	return claims, nil
}
