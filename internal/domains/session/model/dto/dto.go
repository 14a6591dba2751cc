package dto

import (
	"strings"

	"github.com/google/uuid"

	"guide/infras/jwt"
	profileModel "guide/internal/domains/profile/model"
	profileDto "guide/internal/domains/profile/model/dto"
	"guide/internal/domains/session/model"
	gModel "guide/shared/model"
	"guide/shared/timezone"
)

const (
	StatusAuthenticated = "authenticated"
	StatusAnonymous     = "anonymous"
)

type SignUpRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,min=1,max=120"`
	Role     string `json:"role"      validate:"omitempty,oneof=guest host"`
	City     string `json:"city"      validate:"omitempty,max=120"`
}

func (r *SignUpRequest) ToAuthUserModel(passwordHash string) model.AuthUser {
	now := timezone.Now()

	return model.AuthUser{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(r.Email),
		PasswordHash: passwordHash,
		Provider:     model.ProviderLocal,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OAuthSignInRequest carries what the provider redirect hands back. The
// identity itself is only trusted after the code is exchanged and the ID
// token verified server-side.
type OAuthSignInRequest struct {
	Code  string `json:"code"  validate:"required"`
	State string `json:"state" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SessionResponse struct {
	Status       string                     `json:"status"`
	AccessToken  string                     `json:"access_token,omitempty"`
	RefreshToken string                     `json:"refresh_token,omitempty"`
	TokenType    string                     `json:"token_type,omitempty"`
	ExpiresIn    int64                      `json:"expires_in,omitempty"`
	Profile      *profileDto.ProfileResponse `json:"profile,omitempty"`
}

func (r *SessionResponse) FromTokenPair(pair *jwt.TokenPair) {
	r.AccessToken = pair.AccessToken
	r.RefreshToken = pair.RefreshToken
	r.TokenType = pair.TokenType
	r.ExpiresIn = pair.ExpiresIn
}

func (r *SessionResponse) WithProfile(profile profileModel.Profile) {
	res := &profileDto.ProfileResponse{}
	res.FromModel(profile)
	r.Profile = res
}

func AnonymousSession() SessionResponse {
	return SessionResponse{Status: StatusAnonymous}
}

// SessionEvent is broadcast on the session topic so every running instance
// observes sign-ins and sign-outs.
type SessionEvent struct {
	Event   string `json:"event"`
	AuthUID string `json:"auth_uid"`
	At      string `json:"at"`
}

type GoogleAuthURLResponse struct {
	URL string `json:"url"`
}
