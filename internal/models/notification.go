package models

import (
	"encoding/json"
	"time"
)

// NotificationChannel is the delivery mechanism a notification was produced for.
type NotificationChannel string

const (
	ChannelWebPush NotificationChannel = "web_push"
	ChannelEmail   NotificationChannel = "email"
)

// Notification is the persisted record of a reminder delivery attempt. Rows are
// written when a reminder fires and are never deleted by the reminder pipeline.
type Notification struct {
	ID           int64               `json:"id"`
	UserID       int64               `json:"user_id"`
	TaskID       *int64              `json:"task_id,omitempty"`
	Channel      NotificationChannel `json:"channel"`
	ScheduledFor time.Time           `json:"scheduled_for"`
	DeliveredAt  *time.Time          `json:"delivered_at,omitempty"`
	Payload      json.RawMessage     `json:"payload,omitempty"`
}

// NotificationPayload is the opaque payload stored with a notification and
// pushed to web push subscribers.
type NotificationPayload struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	TaskID int64  `json:"task_id"`
}
