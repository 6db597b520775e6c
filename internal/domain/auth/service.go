package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
	"github.com/hostelhub/hostelhub-api/internal/pkg/logger"
)

// ErrUntrustedToken means the backend issued a token this service cannot verify,
// usually a JWT secret mismatch.
var ErrUntrustedToken = errors.New("backend issued an unverifiable token")

type Backend interface {
	Login(ctx context.Context, req hostelapi.LoginRequest) (*hostelapi.LoginResponse, error)
}

type Service struct {
	api Backend
	jwt *jwt.Service
}

func NewService(api Backend, jwtService *jwt.Service) *Service {
	return &Service{api: api, jwt: jwtService}
}

// Login proxies the credentials to the backend and checks that the returned
// access token will be accepted by this API.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	res, err := s.api.Login(ctx, hostelapi.LoginRequest{Email: email, Password: req.Password})
	if err != nil {
		return nil, err
	}

	claims, err := s.jwt.ValidateAccessToken(res.AccessToken)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("email", email).Msg("Backend token failed verification")
		return nil, ErrUntrustedToken
	}

	out := &AuthResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User: UserResponse{
			ID:    claims.UserID,
			Name:  res.User.Name,
			Email: firstNonEmpty(res.User.Email, claims.Email),
			Role:  claims.Role,
		},
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		out.ExpiresAt = &exp
	}
	return out, nil
}

// Me describes verified claims.
func Me(claims *jwt.Claims) MeResponse {
	out := MeResponse{
		UserID:  claims.UserID,
		Role:    claims.Role,
		Email:   claims.Email,
		IsAdmin: jwt.IsAdmin(claims.Role),
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		out.ExpiresAt = &exp
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
