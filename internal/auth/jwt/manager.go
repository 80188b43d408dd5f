// Package jwt issues and verifies the HS256 tokens used by the API.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/config"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

// Claims are carried by access tokens
type Claims struct {
	jwt.RegisteredClaims
	Type        string   `json:"typ"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// RefreshClaims are carried by refresh tokens
type RefreshClaims struct {
	jwt.RegisteredClaims
	Type      string `json:"typ"`
	SessionID string `json:"session_id"`
}

// Manager handles JWT operations
type Manager struct {
	config *config.JWTConfig
	now    func() time.Time
}

// NewManager creates a new JWT manager
func NewManager(cfg *config.JWTConfig) *Manager {
	return &Manager{config: cfg, now: time.Now}
}

// TokenPair contains access and refresh tokens
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	TokenType        string    `json:"token_type"`
}

// GenerateTokenPair signs an access token for a and a refresh token bound to sessionID
func (m *Manager) GenerateTokenPair(a *actor.Actor, sessionID string) (*TokenPair, error) {
	now := m.now()
	accessExpiry := now.Add(m.config.AccessExpiry)
	refreshExpiry := now.Add(m.config.RefreshExpiry)

	access := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   a.ID,
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Type:        accessTokenType,
		Username:    a.Username,
		Email:       a.Email,
		Role:        a.RoleName,
		Permissions: a.Permissions,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString([]byte(m.config.Secret))
	if err != nil {
		return nil, err
	}

	refresh := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   a.ID,
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Type:      refreshTokenType,
		SessionID: sessionID,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString([]byte(m.config.Secret))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresAt:        accessExpiry,
		RefreshExpiresAt: refreshExpiry,
		TokenType:        "Bearer",
	}, nil
}

// ValidateAccessToken validates an access token and returns the claims
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	var claims Claims
	if err := m.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	if claims.Type != accessTokenType {
		return nil, errors.TokenInvalid()
	}
	return &claims, nil
}

// ValidateRefreshToken validates a refresh token and returns the claims
func (m *Manager) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := m.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	if claims.Type != refreshTokenType || claims.SessionID == "" {
		return nil, errors.TokenInvalid()
	}
	return &claims, nil
}

// ParseActor validates an access token and returns who it was issued to.
func (m *Manager) ParseActor(tokenString string) (*actor.Actor, error) {
	claims, err := m.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &actor.Actor{
		ID:          claims.Subject,
		Username:    claims.Username,
		Email:       claims.Email,
		RoleName:    claims.Role,
		Permissions: claims.Permissions,
	}, nil
}

// RefreshExpiry returns the refresh token lifetime
func (m *Manager) RefreshExpiry() time.Duration {
	return m.config.RefreshExpiry
}

func (m *Manager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.TokenInvalid()
		}
		return []byte(m.config.Secret), nil
	},
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return errors.TokenExpired()
		}
		return errors.TokenInvalid()
	}
	if !token.Valid {
		return errors.TokenInvalid()
	}
	return nil
}
