package dto

import (
	"time"

	"github.com/google/uuid"

	"guide/internal/domains/feedback/model"
	"guide/shared/timezone"
)

type FeedbackResponse struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	ExperienceID string    `json:"experience_id"`
	GuestID      string    `json:"guest_id"`
	GuestName    string    `json:"guest_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *FeedbackResponse) FromModel(feedback model.Feedback) {
	r.ID = feedback.ID
	r.BookingID = feedback.BookingID
	r.ExperienceID = feedback.ExperienceID
	r.GuestID = feedback.GuestID
	r.GuestName = feedback.GuestName
	r.Rating = feedback.Rating
	r.Comment = feedback.Comment
	r.CreatedAt = feedback.CreatedAt
}

func FromModels(feedbacks []model.Feedback) []FeedbackResponse {
	responses := make([]FeedbackResponse, len(feedbacks))

	for idx, feedback := range feedbacks {
		responses[idx].FromModel(feedback)
	}

	return responses
}

type CreateFeedbackRequest struct {
	// BookingID comes from the URL, not the body.
	BookingID string `json:"-"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"omitempty,max=2000"`
}

func (r *CreateFeedbackRequest) ToModel(experienceID, guestID, hostID string) model.Feedback {
	return model.Feedback{
		ID:           uuid.NewString(),
		BookingID:    r.BookingID,
		ExperienceID: experienceID,
		GuestID:      guestID,
		HostID:       hostID,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    timezone.Now(),
	}
}
