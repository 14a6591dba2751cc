package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"guide/config"
	"guide/infras/jwt"
	jwtMocks "guide/infras/jwt/mocks"
	kafkaMocks "guide/infras/kafka/mocks"
	"guide/infras/oauth"
	oauthMocks "guide/infras/oauth/mocks"
	"guide/infras/otel/mocks"
	notificationMocks "guide/internal/domains/notification/mocks"
	profileMocks "guide/internal/domains/profile/mocks"
	profileModel "guide/internal/domains/profile/model"
	profileDto "guide/internal/domains/profile/model/dto"
	sessionMocks "guide/internal/domains/session/mocks"
	"guide/internal/domains/session/model"
	"guide/internal/domains/session/model/dto"
	"guide/internal/domains/session/service"
	cacheMocks "guide/shared/cache/mocks"
	"guide/shared/constant"
	"guide/shared/failure"
	gModel "guide/shared/model"
	"guide/shared/password"
	"guide/shared/timezone"
)

type sessionMocksBundle struct {
	authRepo    *sessionMocks.MockAuthUser
	profileRepo *profileMocks.MockProfile
	cache       *cacheMocks.MockCache
	kafkaClient *kafkaMocks.MockClient
	jwtService  *jwtMocks.MockJWT
	google      *oauthMocks.MockGoogle
	notifier    *notificationMocks.MockNotifier
}

func newSessionService(t *testing.T) (service.Session, sessionMocksBundle) {
	t.Helper()

	ctrl := gomock.NewController(t)

	bundle := sessionMocksBundle{
		authRepo:    sessionMocks.NewMockAuthUser(ctrl),
		profileRepo: profileMocks.NewMockProfile(ctrl),
		cache:       cacheMocks.NewMockCache(ctrl),
		kafkaClient: kafkaMocks.NewMockClient(ctrl),
		jwtService:  jwtMocks.NewMockJWT(ctrl),
		google:      oauthMocks.NewMockGoogle(ctrl),
		notifier:    notificationMocks.NewMockNotifier(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL.Profile = 300
	cfg.OAuth.Google.StateTTLSeconds = 600

	svc := service.New(
		bundle.authRepo,
		bundle.profileRepo,
		cfg,
		bundle.cache,
		bundle.kafkaClient,
		bundle.jwtService,
		bundle.google,
		bundle.notifier,
		mocks.NewOtel(),
	)

	// Session events, cache warm-ups and notifications happen off the
	// request goroutine.
	bundle.kafkaClient.EXPECT().
		SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	bundle.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	bundle.notifier.EXPECT().
		Push(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		AnyTimes()

	return svc, bundle
}

func validProfile() profileModel.Profile {
	now := timezone.Now()

	return profileModel.Profile{
		ID:       "profile-1",
		AuthUID:  "auth-1",
		FullName: "Sari Dewi",
		Role:     constant.RoleGuest,
		City:     "Yogyakarta",
		Verified: false,
		Metadata: gModel.Metadata{CreatedAt: now, UpdatedAt: now},
	}
}

func validTokenPair() *jwt.TokenPair {
	return &jwt.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}
}

func TestSessionService_Initialize(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		setupMock  func(m sessionMocksBundle)
		wantStatus string
		wantErr    bool
	}{
		{
			name:       "no stored token yields anonymous session",
			token:      "",
			setupMock:  func(m sessionMocksBundle) {},
			wantStatus: dto.StatusAnonymous,
		},
		{
			name:  "invalid token yields anonymous session",
			token: "stale-token",
			setupMock: func(m sessionMocksBundle) {
				m.jwtService.EXPECT().
					ValidateToken("stale-token", jwt.AccessToken).
					Return(nil, jwt.ErrExpiredToken)
			},
			wantStatus: dto.StatusAnonymous,
		},
		{
			name:  "valid token resolves authenticated session",
			token: "live-token",
			setupMock: func(m sessionMocksBundle) {
				m.jwtService.EXPECT().
					ValidateToken("live-token", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "auth-1"}, nil)

				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(validProfile(), nil)
			},
			wantStatus: dto.StatusAuthenticated,
		},
		{
			name:  "valid token without profile fails",
			token: "live-token",
			setupMock: func(m sessionMocksBundle) {
				m.jwtService.EXPECT().
					ValidateToken("live-token", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "auth-gone"}, nil)

				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSessionService(t)
			tt.setupMock(m)

			res, err := svc.Initialize(context.Background(), tt.token)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantStatus, res.Status)
			}
		})
	}
}

func TestSessionService_SignUp(t *testing.T) {
	req := dto.SignUpRequest{
		Email:    "sari@example.com",
		Password: "correct-horse",
		FullName: "Sari Dewi",
	}

	tests := []struct {
		name      string
		req       dto.SignUpRequest
		setupMock func(m sessionMocksBundle)
		wantErr   bool
	}{
		{
			name: "successful sign-up provisions guest profile",
			req:  req,
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				m.authRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)

				m.profileRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, profile profileModel.Profile) error {
						assert.Equal(t, constant.RoleGuest, profile.Role)
						assert.Equal(t, constant.ProvisionDefaultCity, profile.City)
						assert.False(t, profile.Verified)

						return nil
					})

				m.jwtService.EXPECT().
					GenerateTokenPair(gomock.Any(), "sari@example.com", constant.RoleGuest).
					Return(validTokenPair(), nil)
			},
		},
		{
			name: "duplicate email conflicts",
			req:  req,
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
			wantErr: true,
		},
		{
			name: "exist check error",
			req:  req,
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSessionService(t)
			tt.setupMock(m)

			res, err := svc.SignUp(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, dto.StatusAuthenticated, res.Status)
				assert.Equal(t, "access", res.AccessToken)
				assert.NotNil(t, res.Profile)
			}
		})
	}
}

func TestSessionService_SignIn(t *testing.T) {
	passwordHash, err := password.Hash("correct-horse")
	assert.NoError(t, err)

	authUser := model.AuthUser{
		ID:           "auth-1",
		Email:        "sari@example.com",
		PasswordHash: passwordHash,
		Provider:     model.ProviderLocal,
	}

	tests := []struct {
		name      string
		req       dto.SignInRequest
		setupMock func(m sessionMocksBundle)
		wantErr   bool
	}{
		{
			name: "successful sign-in",
			req:  dto.SignInRequest{Email: "sari@example.com", Password: "correct-horse"},
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(authUser, nil)

				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(validProfile(), nil)

				m.jwtService.EXPECT().
					GenerateTokenPair("auth-1", "sari@example.com", constant.RoleGuest).
					Return(validTokenPair(), nil)
			},
		},
		{
			name: "unknown email",
			req:  dto.SignInRequest{Email: "nobody@example.com", Password: "whatever"},
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.AuthUser{}, nil)
			},
			wantErr: true,
		},
		{
			name: "wrong password",
			req:  dto.SignInRequest{Email: "sari@example.com", Password: "wrong"},
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(authUser, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSessionService(t)
			tt.setupMock(m)

			res, err := svc.SignIn(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, dto.StatusAuthenticated, res.Status)
			}
		})
	}
}

func TestSessionService_ProvisionOAuthProfile(t *testing.T) {
	authUser := model.AuthUser{ID: "auth-1", Email: "sari@example.com", Provider: model.ProviderGoogle}

	uniqueViolation := fmt.Errorf("failed to insert data (profile): %w", &pq.Error{Code: "23505"})

	tests := []struct {
		name      string
		fullName  string
		setupMock func(m sessionMocksBundle)
		wantName  string
		wantErr   bool
	}{
		{
			name:     "existing profile returned untouched",
			fullName: "Sari Dewi",
			setupMock: func(m sessionMocksBundle) {
				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(validProfile(), nil)
			},
			wantName: "Sari Dewi",
		},
		{
			name:     "missing profile gets provisioned with defaults",
			fullName: "",
			setupMock: func(m sessionMocksBundle) {
				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{}, nil)

				m.profileRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, profile profileModel.Profile) error {
						assert.Equal(t, constant.ProvisionDefaultName, profile.FullName)
						assert.Equal(t, constant.RoleGuest, profile.Role)
						assert.Equal(t, constant.ProvisionDefaultCity, profile.City)

						return nil
					})
			},
			wantName: constant.ProvisionDefaultName,
		},
		{
			name:     "concurrent provisioning falls back to existing row",
			fullName: "Sari Dewi",
			setupMock: func(m sessionMocksBundle) {
				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{}, nil)

				m.profileRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(uniqueViolation)

				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(validProfile(), nil)
			},
			wantName: "Sari Dewi",
		},
		{
			name:     "non-unique insert error propagates",
			fullName: "Sari Dewi",
			setupMock: func(m sessionMocksBundle) {
				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{}, nil)

				m.profileRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSessionService(t)
			tt.setupMock(m)

			profile, err := svc.ProvisionOAuthProfile(context.Background(), authUser, tt.fullName)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantName, profile.FullName)
			}
		})
	}
}

func TestSessionService_EnsureProfile(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(m sessionMocksBundle)
		wantErr   bool
	}{
		{
			name: "provisions with the email local part",
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.AuthUser{ID: "auth-1", Email: "sari@example.com", Provider: model.ProviderGoogle}, nil)

				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(profileModel.Profile{}, nil)

				m.profileRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, profile profileModel.Profile) error {
						assert.Equal(t, "sari", profile.FullName)

						return nil
					})
			},
		},
		{
			name: "existing profile is left untouched",
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.AuthUser{ID: "auth-1", Email: "sari@example.com"}, nil)

				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(validProfile(), nil)
			},
		},
		{
			name: "unknown principal not found",
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.AuthUser{}, nil)
			},
			wantErr: true,
		},
		{
			name: "lookup error propagates",
			setupMock: func(m sessionMocksBundle) {
				m.authRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.AuthUser{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSessionService(t)
			tt.setupMock(m)

			err := svc.EnsureProfile(context.Background(), "auth-1")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionService_SignInWithGoogle(t *testing.T) {
	req := dto.OAuthSignInRequest{
		Code:  "auth-code-1",
		State: "state-xyz",
	}

	identity := oauth.Identity{
		Subject:  "google-sub-1",
		Email:    "sari@example.com",
		FullName: "Sari Dewi",
	}

	expectStoredState := func(m sessionMocksBundle, state string) {
		m.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, into any) error {
				*(into.(*string)) = state

				return nil
			})

		m.cache.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil)
	}

	t.Run("first sign-in creates principal and profile", func(t *testing.T) {
		svc, m := newSessionService(t)

		expectStoredState(m, "state-xyz")

		m.google.EXPECT().
			Exchange(gomock.Any(), "auth-code-1").
			Return(identity, nil)

		m.authRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.AuthUser{}, nil)

		m.authRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, authUser model.AuthUser) error {
				assert.Equal(t, model.ProviderGoogle, authUser.Provider)
				assert.Empty(t, authUser.PasswordHash)

				return nil
			})

		m.profileRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(profileModel.Profile{}, nil)

		m.profileRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, profile profileModel.Profile) error {
				// Name comes from the verified ID token.
				assert.Equal(t, "Sari Dewi", profile.FullName)

				return nil
			})

		m.jwtService.EXPECT().
			GenerateTokenPair(gomock.Any(), "sari@example.com", constant.RoleGuest).
			Return(validTokenPair(), nil)

		res, err := svc.SignInWithGoogle(context.Background(), req)

		assert.NoError(t, err)
		assert.Equal(t, dto.StatusAuthenticated, res.Status)
	})

	t.Run("repeat sign-in reuses existing rows", func(t *testing.T) {
		svc, m := newSessionService(t)

		expectStoredState(m, "state-xyz")

		m.google.EXPECT().
			Exchange(gomock.Any(), "auth-code-1").
			Return(identity, nil)

		m.authRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.AuthUser{ID: "auth-1", Email: "sari@example.com", Provider: model.ProviderGoogle}, nil)

		m.profileRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(validProfile(), nil)

		m.jwtService.EXPECT().
			GenerateTokenPair("auth-1", "sari@example.com", constant.RoleGuest).
			Return(validTokenPair(), nil)

		res, err := svc.SignInWithGoogle(context.Background(), req)

		assert.NoError(t, err)
		assert.NotNil(t, res.Profile)
	})

	t.Run("forged callback with unknown state never reaches the provider", func(t *testing.T) {
		svc, m := newSessionService(t)

		m.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		forged := dto.OAuthSignInRequest{Code: "auth-code-1", State: "made-up"}

		_, err := svc.SignInWithGoogle(context.Background(), forged)

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("rejected code exchange opens no session", func(t *testing.T) {
		svc, m := newSessionService(t)

		expectStoredState(m, "state-xyz")

		m.google.EXPECT().
			Exchange(gomock.Any(), "auth-code-1").
			Return(oauth.Identity{}, errors.New("token endpoint returned 400"))

		_, err := svc.SignInWithGoogle(context.Background(), req)

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestSessionService_SignOut(t *testing.T) {
	t.Run("clears cache", func(t *testing.T) {
		svc, m := newSessionService(t)

		m.cache.EXPECT().
			Clear(gomock.Any()).
			Return(nil)

		ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "auth-1")
		assert.NoError(t, svc.SignOut(ctx))
	})

	t.Run("cache clear failure surfaces", func(t *testing.T) {
		svc, m := newSessionService(t)

		m.cache.EXPECT().
			Clear(gomock.Any()).
			Return(errors.New("redis down"))

		ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "auth-1")
		assert.Error(t, svc.SignOut(ctx))
	})
}

func TestSessionService_UpdateProfile(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		req       profileDto.UpdateProfileRequest
		setupMock func(m sessionMocksBundle)
		wantErr   bool
	}{
		{
			name: "successful update invalidates cached profile",
			ctx:  context.WithValue(context.Background(), constant.ContextKeyUserID, "auth-1"),
			req:  profileDto.UpdateProfileRequest{City: "Bandung"},
			setupMock: func(m sessionMocksBundle) {
				m.profileRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.profileRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.cache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				updated := validProfile()
				updated.City = "Bandung"

				m.profileRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(updated, nil)
			},
		},
		{
			name:      "empty request rejected",
			ctx:       context.WithValue(context.Background(), constant.ContextKeyUserID, "auth-1"),
			req:       profileDto.UpdateProfileRequest{},
			setupMock: func(m sessionMocksBundle) {},
			wantErr:   true,
		},
		{
			name:      "missing session rejected",
			ctx:       context.Background(),
			req:       profileDto.UpdateProfileRequest{City: "Bandung"},
			setupMock: func(m sessionMocksBundle) {},
			wantErr:   true,
		},
		{
			name: "profile not found",
			ctx:  context.WithValue(context.Background(), constant.ContextKeyUserID, "auth-gone"),
			req:  profileDto.UpdateProfileRequest{City: "Bandung"},
			setupMock: func(m sessionMocksBundle) {
				m.profileRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSessionService(t)
			tt.setupMock(m)

			res, err := svc.UpdateProfile(tt.ctx, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Bandung", res.City)
			}
		})
	}
}

func TestSessionService_GoogleAuthURL(t *testing.T) {
	// Built without the shared bundle so the state store call can carry a
	// strict expectation.
	newBareService := func(t *testing.T) (service.Session, *cacheMocks.MockCache, *oauthMocks.MockGoogle) {
		t.Helper()

		ctrl := gomock.NewController(t)
		cacheMock := cacheMocks.NewMockCache(ctrl)
		googleMock := oauthMocks.NewMockGoogle(ctrl)

		cfg := &config.Config{}
		cfg.OAuth.Google.StateTTLSeconds = 600

		svc := service.New(
			sessionMocks.NewMockAuthUser(ctrl),
			profileMocks.NewMockProfile(ctrl),
			cfg,
			cacheMock,
			kafkaMocks.NewMockClient(ctrl),
			jwtMocks.NewMockJWT(ctrl),
			googleMock,
			notificationMocks.NewMockNotifier(ctrl),
			mocks.NewOtel(),
		)

		return svc, cacheMock, googleMock
	}

	t.Run("stores the state it embeds", func(t *testing.T) {
		svc, cacheMock, googleMock := newBareService(t)

		var savedState string

		cacheMock.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), 600).
			DoAndReturn(func(_ context.Context, key string, value any, _ int) error {
				savedState, _ = value.(string)
				assert.Contains(t, key, savedState)

				return nil
			})

		googleMock.EXPECT().
			AuthURL(gomock.Any()).
			DoAndReturn(func(state string) string {
				return "https://accounts.google.com/o/oauth2/v2/auth?state=" + state
			})

		authURL, err := svc.GoogleAuthURL(context.Background())

		assert.NoError(t, err)
		assert.NotEmpty(t, savedState)
		assert.Contains(t, authURL, "state="+savedState)
	})

	t.Run("state store failure surfaces", func(t *testing.T) {
		svc, cacheMock, _ := newBareService(t)

		cacheMock.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), 600).
			Return(errors.New("redis down"))

		_, err := svc.GoogleAuthURL(context.Background())
		assert.Error(t, err)
	})
}
