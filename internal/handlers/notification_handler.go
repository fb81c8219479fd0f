package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"taskorganizer/internal/models"
	"taskorganizer/internal/repositories"
	"taskorganizer/internal/services"
)

type NotificationHandler struct {
	subscriptions repositories.PushSubscriptionRepository
	notifications repositories.NotificationRepository
	webpush       services.WebPushService
}

func NewNotificationHandler(
	subscriptions repositories.PushSubscriptionRepository,
	notifications repositories.NotificationRepository,
	webpush services.WebPushService,
) *NotificationHandler {
	return &NotificationHandler{
		subscriptions: subscriptions,
		notifications: notifications,
		webpush:       webpush,
	}
}

// GET /notifications/vapid-public-key
func (h *NotificationHandler) VAPIDPublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.PublicKey()})
}

// POST /notifications/subscribe
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		Endpoint string            `json:"endpoint" binding:"required"`
		Keys     map[string]string `json:"keys" binding:"required"` // p256dh and auth
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := &models.PushSubscription{
		UserID:    userID,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys["p256dh"],
		Auth:      req.Keys["auth"],
		CreatedAt: time.Now(),
	}
	if err := h.subscriptions.Upsert(c.Request.Context(), sub); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("subscribe failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "subscribed"})
}

// DELETE /notifications/subscribe
func (h *NotificationHandler) Unsubscribe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.subscriptions.DeleteByEndpoint(c.Request.Context(), userID, req.Endpoint); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("unsubscribe failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unsubscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}

// GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	items, err := h.notifications.ListByUser(c.Request.Context(), userID, 50)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("list notifications failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve notifications"})
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	c.JSON(http.StatusOK, items)
}
