package model

import (
	"fmt"
	"time"

	profileModel "guide/internal/domains/profile/model"
)

const (
	TableName  = "messages"
	EntityName = "message"

	FieldID              = "id"
	FieldBookingID       = "booking_id"
	FieldSenderProfileID = "sender_profile_id"
	FieldBody            = "body"
	FieldCreatedAt       = "created_at"
)

const senderProfileAlias = "sender_profiles"

// Message is append-only: rows carry created_at but are never updated.
type Message struct {
	ID              string    `db:"id"`
	BookingID       string    `db:"booking_id"`
	SenderProfileID string    `db:"sender_profile_id"`
	Body            string    `db:"body"`
	CreatedAt       time.Time `db:"created_at"`

	SenderName string `db:"sender_name" table:"sender_profiles" column:"full_name"`
}

func (Message) GetJoinQuery() string {
	return fmt.Sprintf(
		"LEFT JOIN %s AS %s ON %s.%s = %s.%s",
		profileModel.TableName, senderProfileAlias,
		TableName, FieldSenderProfileID,
		senderProfileAlias, profileModel.FieldID,
	)
}
