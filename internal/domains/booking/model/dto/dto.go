package dto

import (
	"github.com/google/uuid"

	"guide/internal/domains/booking/model"
	gDto "guide/shared/dto"
	gModel "guide/shared/model"
	"guide/shared/timezone"
)

type BookingResponse struct {
	ID              string `json:"id"`
	ExperienceID    string `json:"experience_id"`
	GuestID         string `json:"guest_id"`
	Status          string `json:"status"`
	GuestMessage    string `json:"guest_message,omitempty"`
	ExperienceTitle string `json:"experience_title"`
	ExperienceCity  string `json:"experience_city"`
	HostID          string `json:"host_id"`
	GuestName       string `json:"guest_name"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(booking model.Booking) {
	r.ID = booking.ID
	r.ExperienceID = booking.ExperienceID
	r.GuestID = booking.GuestID
	r.Status = booking.Status
	r.GuestMessage = booking.GuestMessage
	r.ExperienceTitle = booking.ExperienceTitle
	r.ExperienceCity = booking.ExperienceCity
	r.HostID = booking.HostID
	r.GuestName = booking.GuestName
	r.Metadata.FromModel(booking.Metadata)
}

func FromModels(bookings []model.Booking) []BookingResponse {
	responses := make([]BookingResponse, len(bookings))

	for idx, booking := range bookings {
		responses[idx].FromModel(booking)
	}

	return responses
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalData int               `json:"total_data"`
	TotalPage int               `json:"total_page"`
}

type CreateBookingRequest struct {
	ExperienceID string `json:"experience_id" validate:"required"`
	GuestMessage string `json:"guest_message" validate:"omitempty,max=2000"`
}

func (r *CreateBookingRequest) ToModel(guestID string) model.Booking {
	now := timezone.Now()

	return model.Booking{
		ID:           uuid.NewString(),
		ExperienceID: r.ExperienceID,
		GuestID:      guestID,
		Status:       model.StatusPending,
		GuestMessage: r.GuestMessage,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
