package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"taskorganizer/internal/middleware"
	"taskorganizer/internal/models"
	"taskorganizer/internal/utils"
)

type AuthService interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
	NewAccessToken(user *models.User) (string, error)
	NewRefreshToken() (string, time.Time, error)
}

type authService struct {
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(jwtSecret []byte, accessTTL, refreshTTL time.Duration) AuthService {
	return &authService{jwtSecret: jwtSecret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *authService) NewAccessToken(user *models.User) (string, error) {
	claims := &middleware.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// NewRefreshToken issues an opaque token stored on the user row; rotation on
// every refresh invalidates the previous one.
func (s *authService) NewRefreshToken() (string, time.Time, error) {
	token, err := utils.NewOpaqueToken(32)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, time.Now().Add(s.refreshTTL), nil
}
