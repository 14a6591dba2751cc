package dto

import (
	"guide/internal/domains/profile/model"
	gDto "guide/shared/dto"
)

type ProfileResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	City     string `json:"city"`
	Bio      string `json:"bio"`
	Verified bool   `json:"verified"`
	gDto.Metadata
}

func (r *ProfileResponse) FromModel(profile model.Profile) {
	r.ID = profile.ID
	r.FullName = profile.FullName
	r.Role = profile.Role
	r.City = profile.City
	r.Bio = profile.Bio
	r.Verified = profile.Verified
	r.Metadata.FromModel(profile.Metadata)
}

type UpdateProfileRequest struct {
	FullName string `db:"full_name" json:"full_name" validate:"omitempty,min=1,max=120"`
	City     string `db:"city"      json:"city"      validate:"omitempty,max=120"`
	Bio      string `db:"bio"       json:"bio"       validate:"omitempty,max=2000"`
}
