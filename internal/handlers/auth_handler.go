package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"taskorganizer/internal/models"
	"taskorganizer/internal/repositories"
	"taskorganizer/internal/services"
)

type AuthHandler struct {
	users       repositories.UserRepository
	authService services.AuthService
}

func NewAuthHandler(users repositories.UserRepository, authService services.AuthService) *AuthHandler {
	return &AuthHandler{users: users, authService: authService}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("register: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("register: hash password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	user := &models.User{
		Email:        email,
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		log.Error().Err(err).Str("email", email).Msg("register: create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("user registered")
	c.JSON(http.StatusCreated, user)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("login: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}
	if user == nil || !h.authService.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
		return
	}

	accessToken, err := h.authService.NewAccessToken(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("login: sign access token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	refreshToken, refreshExp, err := h.authService.NewRefreshToken()
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("login: new refresh token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}
	if err := h.users.UpdateRefresh(c.Request.Context(), user.ID, refreshToken, refreshExp); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("login: store refresh token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("login ok")
	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
	})
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByRefreshToken(c.Request.Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		log.Error().Err(err).Msg("refresh: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh"})
		return
	}
	if user == nil || user.RefreshExpiresAt == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if time.Now().After(*user.RefreshExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	// rotate
	newRefresh, newExp, err := h.authService.NewRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	if err := h.users.UpdateRefresh(c.Request.Context(), user.ID, newRefresh, newExp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}

	accessToken, err := h.authService.NewAccessToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": newRefresh,
		"token_type":    "bearer",
	})
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("me: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
