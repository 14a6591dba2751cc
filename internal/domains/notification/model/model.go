package model

import (
	"encoding/json"

	"guide/shared/model"
)

const (
	TableName  = "notifications"
	EntityName = "notification"

	FieldID        = "id"
	FieldProfileID = "profile_id"
	FieldType      = "type"
	FieldTitle     = "title"
	FieldMessage   = "message"
	FieldData      = "data"
	FieldRead      = "read"
	FieldCreatedAt = "created_at"
)

// Notification kinds mirror the events the app surfaces in its feed.
const (
	TypeBookingRequest        = "booking_request"
	TypeBookingConfirmed      = "booking_confirmed"
	TypeBookingCancelled      = "booking_cancelled"
	TypeNewMessage            = "new_message"
	TypeNewFeedback           = "new_feedback"
	TypeExperiencePublished   = "experience_published"
	TypeExperienceUnpublished = "experience_unpublished"
	TypeWelcome               = "welcome"
)

type Notification struct {
	ID        string          `db:"id"`
	ProfileID string          `db:"profile_id"`
	Type      string          `db:"type"`
	Title     string          `db:"title"`
	Message   string          `db:"message"`
	Data      json.RawMessage `db:"data"`
	Read      bool            `db:"read"`
	model.Metadata
}
