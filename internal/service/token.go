package service

import (
	"github.com/riftly/scrim/api/internal/model"
	"github.com/riftly/scrim/api/pkg/jwt"
)

// TokenService issues and validates access tokens backed by pkg/jwt
type TokenService struct {
	jwtService *jwt.Service
}

// NewTokenService creates a new token service
func NewTokenService(jwtService *jwt.Service) *TokenService {
	return &TokenService{jwtService: jwtService}
}

// GenerateToken signs an access token for the user
func (s *TokenService) GenerateToken(userID, email, name string) (string, error) {
	return s.jwtService.Sign(jwt.Claims{
		Subject: userID,
		UserID:  userID,
		Email:   email,
		Name:    name,
	})
}

// ValidateToken verifies a token and extracts its claims
func (s *TokenService) ValidateToken(token string) (*model.TokenClaims, error) {
	claims, err := s.jwtService.Validate(token)
	if err != nil {
		return nil, err
	}
	return &model.TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// TokenTTLSeconds reports the configured access token lifetime
func (s *TokenService) TokenTTLSeconds() int {
	return int(s.jwtService.GetExpiration().Seconds())
}
