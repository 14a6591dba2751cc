package dto

import (
	"time"

	"github.com/google/uuid"

	"guide/internal/domains/message/model"
	"guide/shared/timezone"
)

type MessageResponse struct {
	ID              string    `json:"id"`
	BookingID       string    `json:"booking_id"`
	SenderProfileID string    `json:"sender_profile_id"`
	SenderName      string    `json:"sender_name,omitempty"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r *MessageResponse) FromModel(message model.Message) {
	r.ID = message.ID
	r.BookingID = message.BookingID
	r.SenderProfileID = message.SenderProfileID
	r.SenderName = message.SenderName
	r.Body = message.Body
	r.CreatedAt = message.CreatedAt
}

func FromModels(messages []model.Message) []MessageResponse {
	responses := make([]MessageResponse, len(messages))

	for idx, message := range messages {
		responses[idx].FromModel(message)
	}

	return responses
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

func (r *SendMessageRequest) ToModel(bookingID, senderProfileID string) model.Message {
	return model.Message{
		ID:              uuid.NewString(),
		BookingID:       bookingID,
		SenderProfileID: senderProfileID,
		Body:            r.Body,
		CreatedAt:       timezone.Now(),
	}
}

// MessageEvent is the wire shape published on the message topic.
type MessageEvent struct {
	ID              string    `json:"id"`
	BookingID       string    `json:"booking_id"`
	SenderProfileID string    `json:"sender_profile_id"`
	SenderName      string    `json:"sender_name,omitempty"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
}

func (e *MessageEvent) FromResponse(res MessageResponse) {
	e.ID = res.ID
	e.BookingID = res.BookingID
	e.SenderProfileID = res.SenderProfileID
	e.SenderName = res.SenderName
	e.Body = res.Body
	e.CreatedAt = res.CreatedAt
}

func (e MessageEvent) ToResponse() MessageResponse {
	return MessageResponse{
		ID:              e.ID,
		BookingID:       e.BookingID,
		SenderProfileID: e.SenderProfileID,
		SenderName:      e.SenderName,
		Body:            e.Body,
		CreatedAt:       e.CreatedAt,
	}
}
