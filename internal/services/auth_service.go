package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"realtycrm/internal/authz"
	"realtycrm/internal/config"
	"realtycrm/internal/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Leeway tolerated on token expiry.
const tokenLeeway = 2 * time.Minute

type Principal struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (p Principal) IsAdmin() bool { return authz.IsAdmin(p.Role) }

type AuthService struct {
	mu     sync.RWMutex
	users  map[string]config.UserConfig
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    logger.Logger
}

func NewAuthService(users []config.UserConfig, secret string, ttl time.Duration, log logger.Logger) *AuthService {
	s := &AuthService{ttl: ttl, now: time.Now, log: log}
	s.Reload(users, secret)
	return s
}

// Reload swaps the account list and signing secret, e.g. after the install
// wizard wrote a new config. Accounts with an unknown role are skipped.
func (s *AuthService) Reload(users []config.UserConfig, secret string) {
	m := make(map[string]config.UserConfig, len(users))
	for _, u := range users {
		if !authz.ValidRole(u.Role) {
			s.log.Warn("skipping user with unknown role", map[string]interface{}{
				"email": u.Email,
				"role":  u.Role,
			})
			continue
		}
		m[normalizeEmail(u.Email)] = u
	}
	s.mu.Lock()
	s.users = m
	s.secret = []byte(secret)
	s.mu.Unlock()
}

func (s *AuthService) Login(email, password string) (string, Principal, error) {
	s.mu.RLock()
	u, ok := s.users[normalizeEmail(email)]
	s.mu.RUnlock()

	hash := strings.TrimSpace(u.PasswordHash)
	if !ok || hash == "" {
		return "", Principal{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", Principal{}, ErrInvalidCredentials
	}

	p := Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	token, err := s.Issue(p)
	if err != nil {
		return "", Principal{}, err
	}
	return token, p, nil
}

func (s *AuthService) Issue(p Principal) (string, error) {
	now := s.now()
	claims := authz.Claims{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", p.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	s.mu.RLock()
	secret := s.secret
	s.mu.RUnlock()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates an HS256 token and returns its principal.
func (s *AuthService) Parse(tokenStr string) (Principal, error) {
	s.mu.RLock()
	secret := s.secret
	s.mu.RUnlock()

	claims := &authz.Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithLeeway(tokenLeeway), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
