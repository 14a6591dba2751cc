package dto

import (
	"github.com/google/uuid"

	"guide/internal/domains/experience/model"
	gDto "guide/shared/dto"
	gModel "guide/shared/model"
	"guide/shared/timezone"
)

type ExperienceResponse struct {
	ID            string `json:"id"`
	HostID        string `json:"host_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	City          string `json:"city"`
	Price         string `json:"price"`
	ContactMethod string `json:"contact_method"`
	Published     bool   `json:"published"`
	ImageURL      string `json:"image_url,omitempty"`
	ImageAltText  string `json:"image_alt_text,omitempty"`
	HostName      string `json:"host_name"`
	HostVerified  bool   `json:"host_verified"`
	gDto.Metadata
}

func (r *ExperienceResponse) FromModel(experience model.Experience) {
	r.ID = experience.ID
	r.HostID = experience.HostID
	r.Title = experience.Title
	r.Description = experience.Description
	r.City = experience.City
	r.Price = experience.Price
	r.ContactMethod = experience.ContactMethod
	r.Published = experience.Published
	r.ImageURL = experience.ImageURL
	r.ImageAltText = experience.ImageAltText
	r.HostName = experience.HostName
	r.HostVerified = experience.HostVerified
	r.Metadata.FromModel(experience.Metadata)
}

func FromModels(experiences []model.Experience) []ExperienceResponse {
	responses := make([]ExperienceResponse, len(experiences))

	for idx, experience := range experiences {
		responses[idx].FromModel(experience)
	}

	return responses
}

type GetExperiencesResponse struct {
	Experiences []ExperienceResponse `json:"experiences"`
	TotalData   int                  `json:"total_data"`
	TotalPage   int                  `json:"total_page"`
}

type CreateExperienceRequest struct {
	Title         string `json:"title"          validate:"required,min=1,max=200"`
	Description   string `json:"description"    validate:"required,min=1"`
	City          string `json:"city"           validate:"required,min=1,max=120"`
	Price         string `json:"price"          validate:"required,max=60"`
	ContactMethod string `json:"contact_method" validate:"required,oneof=whatsapp email"`
	Published     bool   `json:"published"`
	ImageAltText  string `json:"image_alt_text" validate:"omitempty,max=300"`
}

func (r *CreateExperienceRequest) ToModel(hostID string) model.Experience {
	now := timezone.Now()

	return model.Experience{
		ID:            uuid.NewString(),
		HostID:        hostID,
		Title:         r.Title,
		Description:   r.Description,
		City:          r.City,
		Price:         r.Price,
		ContactMethod: r.ContactMethod,
		Published:     r.Published,
		ImageAltText:  r.ImageAltText,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

type UpdateExperienceRequest struct {
	Title         string `db:"title"          json:"title"          validate:"omitempty,min=1,max=200"`
	Description   string `db:"description"    json:"description"    validate:"omitempty,min=1"`
	City          string `db:"city"           json:"city"           validate:"omitempty,min=1,max=120"`
	Price         string `db:"price"          json:"price"          validate:"omitempty,max=60"`
	ContactMethod string `db:"contact_method" json:"contact_method" validate:"omitempty,oneof=whatsapp email"`
	ImageAltText  string `db:"image_alt_text" json:"image_alt_text" validate:"omitempty,max=300"`
	Published     *bool  `db:"published"      json:"published"      validate:"omitempty"`
}

type UploadImageResponse struct {
	ImageURL string `json:"image_url"`
}

type PublishStateResponse struct {
	Published bool `json:"published"`
}
