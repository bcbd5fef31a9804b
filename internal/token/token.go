// Package token signs and verifies the two JWT classes the auth flows use:
// short-lived access tokens carrying identity claims and long-lived refresh
// tokens carrying only the user id. The two classes use separate secrets.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gautambamne/ECom-sub000/internal/model"
)

// ErrInvalidToken is returned for every verification failure: malformed,
// expired, wrong secret, wrong claim shape. Collapsing the causes avoids
// giving callers an oracle for why a token was rejected.
var ErrInvalidToken = errors.New("invalid or expired token")

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID string   `json:"uid"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token: the user id only.
type RefreshClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Service signs and verifies both token classes. It is state-free.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewService builds a token service. Empty secrets are a configuration
// error; callers treat this as fatal at startup.
func NewService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Service, error) {
	if accessSecret == "" {
		return nil, errors.New("access token secret is not set")
	}
	if refreshSecret == "" {
		return nil, errors.New("refresh token secret is not set")
	}
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// SignAccess issues an access token for the user.
func (s *Service) SignAccess(u *model.User) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Roles:  u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.accessSecret)
}

// SignRefresh issues a refresh token for the user id.
func (s *Service) SignRefresh(userID string) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.refreshSecret)
}

// VerifyAccess parses and validates an access token.
func (s *Service) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token.
func (s *Service) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !t.Valid {
		return ErrInvalidToken
	}
	return nil
}
