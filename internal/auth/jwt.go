// Package auth issues and checks the tokens that protect the dashboard API
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aethra/acueducto/internal/config"
	"github.com/aethra/acueducto/internal/errors"
	"github.com/aethra/acueducto/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "acueducto"

// Claims represents JWT claims for a dashboard operator
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Token is the login response
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

// JWTService handles JWT operations
type JWTService struct {
	secretKey []byte
	expiry    time.Duration
	now       func() time.Time
}

// NewJWTService creates a service signing with secret. An empty secret gets a
// random one, so tokens do not survive a restart.
func NewJWTService(secret string, expiry time.Duration) *JWTService {
	if secret == "" {
		secret = generateRandomSecret()
		logging.Get().Warn("auth: jwt_secret not set, using a random secret")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTService{secretKey: []byte(secret), expiry: expiry, now: time.Now}
}

// GenerateToken signs an access token for username
func (s *JWTService) GenerateToken(username string) (*Token, error) {
	now := s.now()
	expiresAt := now.Add(s.expiry)

	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   username,
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	return &Token{AccessToken: signed, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, errors.NewUnauthorizedError(fmt.Sprintf("invalid token: %v", err))
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.NewUnauthorizedError("invalid token claims")
	}
	return claims, nil
}

// Authenticator checks operator credentials against the configured admin
type Authenticator struct {
	user string
	hash string
	jwt  *JWTService
}

// NewAuthenticator builds an authenticator from the auth config section
func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		user: cfg.AdminUser,
		hash: cfg.AdminPasswordHash,
		jwt:  NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
	}
}

// Tokens returns the underlying JWT service
func (a *Authenticator) Tokens() *JWTService {
	return a.jwt
}

// Login returns a token when username and password match the admin account
func (a *Authenticator) Login(username, password string) (*Token, error) {
	if a.hash == "" {
		return nil, errors.NewUnauthorizedError("login is not configured")
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.user)) == 1
	passOK := CheckPassword(password, a.hash)
	if !userOK || !passOK {
		return nil, errors.NewUnauthorizedError("invalid credentials")
	}
	return a.jwt.GenerateToken(username)
}

// generateRandomSecret generates a random 32-byte secret
func generateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return uuid.New().String() + uuid.New().String()
	}
	return base64.StdEncoding.EncodeToString(bytes)
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a bcrypt hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
