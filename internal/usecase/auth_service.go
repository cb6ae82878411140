package usecase

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	AdminUser    string
	PasswordHash []byte
	JWTSecret    string
	TokenTTL     time.Duration
}

// NewAuthService accepts either a bcrypt hash or a plain password, which it hashes.
func NewAuthService(user, password, secret string) (*AuthService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrBadRequest("jwt secret required")
	}
	hash := []byte(password)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
	}
	return &AuthService{
		AdminUser:    user,
		PasswordHash: hash,
		JWTSecret:    secret,
		TokenTTL:     12 * time.Hour,
	}, nil
}

func (s *AuthService) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.AdminUser)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", ErrBadCredentials
	}
	claims := jwt.MapClaims{
		"sub":  s.AdminUser,
		"role": "admin",
		"exp":  time.Now().Add(s.TokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.JWTSecret))
}

// Verify returns the admin name carried by a valid token.
func (s *AuthService) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(s.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized("invalid token")
	}
	m, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized("invalid token")
	}
	if role, _ := m["role"].(string); role != "admin" {
		return "", ErrUnauthorized("not an admin token")
	}
	sub, _ := m["sub"].(string)
	return sub, nil
}
