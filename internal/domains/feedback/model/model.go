package model

import (
	"fmt"
	"time"

	profileModel "guide/internal/domains/profile/model"
)

const (
	TableName  = "feedback"
	EntityName = "feedback"

	FieldID           = "id"
	FieldBookingID    = "booking_id"
	FieldExperienceID = "experience_id"
	FieldGuestID      = "guest_id"
	FieldHostID       = "host_id"
	FieldRating       = "rating"
	FieldComment      = "comment"
	FieldCreatedAt    = "created_at"
)

const (
	RatingMin = 1
	RatingMax = 5
)

const guestProfileAlias = "guest_profiles"

// Feedback is one rating per booking, enforced by a unique index on
// booking_id.
type Feedback struct {
	ID           string    `db:"id"`
	BookingID    string    `db:"booking_id"`
	ExperienceID string    `db:"experience_id"`
	GuestID      string    `db:"guest_id"`
	HostID       string    `db:"host_id"`
	Rating       int       `db:"rating"`
	Comment      string    `db:"comment"`
	CreatedAt    time.Time `db:"created_at"`

	GuestName string `db:"guest_name" table:"guest_profiles" column:"full_name"`
}

func (Feedback) GetJoinQuery() string {
	return fmt.Sprintf(
		"LEFT JOIN %s AS %s ON %s.%s = %s.%s",
		profileModel.TableName, guestProfileAlias,
		TableName, FieldGuestID,
		guestProfileAlias, profileModel.FieldID,
	)
}
