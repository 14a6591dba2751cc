package model

import (
	"fmt"

	experienceModel "guide/internal/domains/experience/model"
	profileModel "guide/internal/domains/profile/model"
	"guide/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID           = "id"
	FieldExperienceID = "experience_id"
	FieldGuestID      = "guest_id"
	FieldStatus       = "status"
	FieldGuestMessage = "guest_message"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const guestProfileAlias = "guest_profiles"

type Booking struct {
	ID           string `db:"id"`
	ExperienceID string `db:"experience_id"`
	GuestID      string `db:"guest_id"`
	Status       string `db:"status"`
	GuestMessage string `db:"guest_message"`

	ExperienceTitle string `db:"experience_title" table:"experiences"     column:"title"`
	ExperienceCity  string `db:"experience_city"  table:"experiences"     column:"city"`
	HostID          string `db:"host_id"          table:"experiences"     column:"host_id"`
	GuestName       string `db:"guest_name"       table:"guest_profiles"  column:"full_name"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return fmt.Sprintf(
		"LEFT JOIN %s ON %s.%s = %s.%s LEFT JOIN %s AS %s ON %s.%s = %s.%s",
		experienceModel.TableName,
		TableName, FieldExperienceID,
		experienceModel.TableName, experienceModel.FieldID,
		profileModel.TableName, guestProfileAlias,
		TableName, FieldGuestID,
		guestProfileAlias, profileModel.FieldID,
	)
}

// Terminal reports whether the booking can no longer change state.
func (b Booking) Terminal() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCancelled
}
