package dto

import (
	"encoding/json"
	"time"

	"guide/internal/domains/notification/model"
)

type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

func (r *NotificationResponse) FromModel(notification model.Notification) {
	r.ID = notification.ID
	r.Type = notification.Type
	r.Title = notification.Title
	r.Message = notification.Message
	r.Data = notification.Data
	r.Read = notification.Read
	r.CreatedAt = notification.CreatedAt
}

func FromModels(notifications []model.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(notifications))

	for idx, notification := range notifications {
		responses[idx].FromModel(notification)
	}

	return responses
}

type GetNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}
