package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpiredToken is returned when a token's expiry has passed
	ErrExpiredToken = errors.New("token has expired")

	// ErrInvalidSignature is returned when a token's signature does not verify
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrInvalidToken is returned for any other token problem
	ErrInvalidToken = errors.New("invalid token")
)

// Claims holds the authenticated user's identity
type Claims struct {
	UserID string   `json:"sub"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTConfig configures token validation
type JWTConfig struct {
	SecretKey string
	Issuer    string
	Audience  []string
}

// JWTValidator validates bearer tokens
type JWTValidator struct {
	cfg JWTConfig
}

// NewJWTValidator creates a validator from configuration
func NewJWTValidator(cfg JWTConfig) (*JWTValidator, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("JWT secret key is required")
	}
	return &JWTValidator{cfg: cfg}, nil
}

// ValidateToken parses and verifies a token, returning its claims
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.cfg.SecretKey), nil
	}, jwt.WithIssuer(v.cfg.Issuer))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" && claims.Subject != "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// JWTGenerator issues tokens, used by tests and local development
type JWTGenerator struct {
	cfg    JWTConfig
	expiry time.Duration
}

// NewJWTGenerator creates a token generator
func NewJWTGenerator(cfg JWTConfig, expiry time.Duration) (*JWTGenerator, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("JWT secret key is required")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTGenerator{cfg: cfg, expiry: expiry}, nil
}

// GenerateToken issues a signed token for a user
func (g *JWTGenerator) GenerateToken(userID, email string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    g.cfg.Issuer,
			Audience:  g.cfg.Audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(g.cfg.SecretKey))
}
