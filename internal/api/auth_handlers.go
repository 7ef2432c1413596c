package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aethra/acueducto/internal/auth"
	"github.com/aethra/acueducto/internal/errors"
	"github.com/gin-gonic/gin"
)

const (
	maxLoginAttempts = 5
	loginWindow      = 5 * time.Minute
	loginBlock       = 15 * time.Minute
)

// LoginRateLimiter implements rate limiting for login attempts
type LoginRateLimiter struct {
	attempts map[string]*loginAttempt
	mu       sync.Mutex
	now      func() time.Time
}

type loginAttempt struct {
	count     int
	firstTry  time.Time
	blockedAt *time.Time
}

// NewLoginRateLimiter creates a new rate limiter
func NewLoginRateLimiter() *LoginRateLimiter {
	return &LoginRateLimiter{
		attempts: make(map[string]*loginAttempt),
		now:      time.Now,
	}
}

// Allow checks if a login attempt is allowed and counts it
func (rl *LoginRateLimiter) Allow(key string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	attempt, exists := rl.attempts[key]
	if !exists {
		rl.attempts[key] = &loginAttempt{count: 1, firstTry: now}
		return true, maxLoginAttempts - 1, 0
	}

	if attempt.blockedAt != nil {
		if elapsed := now.Sub(*attempt.blockedAt); elapsed < loginBlock {
			return false, 0, loginBlock - elapsed
		}
		*attempt = loginAttempt{count: 1, firstTry: now}
		return true, maxLoginAttempts - 1, 0
	}

	if now.Sub(attempt.firstTry) > loginWindow {
		*attempt = loginAttempt{count: 1, firstTry: now}
		return true, maxLoginAttempts - 1, 0
	}

	attempt.count++
	if attempt.count > maxLoginAttempts {
		attempt.blockedAt = &now
		return false, 0, loginBlock
	}
	return true, maxLoginAttempts - attempt.count, 0
}

// Reset resets the attempts for a key (on successful login)
func (rl *LoginRateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
}

// prune drops entries idle for longer than a block; called with mu held
func (rl *LoginRateLimiter) prune(now time.Time) {
	for key, attempt := range rl.attempts {
		if attempt.blockedAt == nil && now.Sub(attempt.firstTry) > loginBlock+loginWindow {
			delete(rl.attempts, key)
		}
	}
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authn       *auth.Authenticator
	rateLimiter *LoginRateLimiter
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authn *auth.Authenticator) *AuthHandler {
	return &AuthHandler{
		authn:       authn,
		rateLimiter: NewLoginRateLimiter(),
	}
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the admin credentials and returns a token
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.NewBadRequestError("invalid request: "+err.Error()))
		return
	}

	key := c.ClientIP() + ":" + req.Username
	allowed, remaining, retryAfter := h.rateLimiter.Allow(key)
	if !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "TOO_MANY_ATTEMPTS",
			"message":     "too many login attempts",
			"retry_after": retryAfter.Seconds(),
		})
		return
	}

	token, err := h.authn.Login(req.Username, req.Password)
	if err != nil {
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		respondError(c, err)
		return
	}

	h.rateLimiter.Reset(key)
	c.JSON(http.StatusOK, token)
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(tokens *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			respondError(c, errors.NewUnauthorizedError(""))
			return
		}
		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set("username", claims.Username)
		c.Next()
	}
}
