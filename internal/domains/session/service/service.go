package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"guide/config"
	"guide/infras/jwt"
	"guide/infras/kafka"
	"guide/infras/oauth"
	"guide/infras/otel"
	notificationModel "guide/internal/domains/notification/model"
	notificationService "guide/internal/domains/notification/service"
	profileModel "guide/internal/domains/profile/model"
	profileDto "guide/internal/domains/profile/model/dto"
	profileRepo "guide/internal/domains/profile/repository"
	"guide/internal/domains/session/model"
	"guide/internal/domains/session/model/dto"
	"guide/internal/domains/session/repository"
	"guide/shared"
	"guide/shared/cache"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
	gModel "guide/shared/model"
	"guide/shared/password"
	"guide/shared/timezone"
)

const (
	cacheGetProfile = "profile:get"
	cacheOAuthState = "oauth:state"
)

// Session owns the authenticated identity: credentials, tokens, the profile
// row behind them, and the event stream other instances watch.
type Session interface {
	Initialize(ctx context.Context, accessToken string) (dto.SessionResponse, error)
	SignUp(ctx context.Context, req dto.SignUpRequest) (dto.SessionResponse, error)
	SignIn(ctx context.Context, req dto.SignInRequest) (dto.SessionResponse, error)
	GoogleAuthURL(ctx context.Context) (string, error)
	SignInWithGoogle(ctx context.Context, req dto.OAuthSignInRequest) (dto.SessionResponse, error)
	ProvisionOAuthProfile(ctx context.Context, authUser model.AuthUser, fullName string) (profileModel.Profile, error)
	EnsureProfile(ctx context.Context, authUID string) error
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.SessionResponse, error)
	SignOut(ctx context.Context) error
	Profile(ctx context.Context) (profileDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, req profileDto.UpdateProfileRequest) (profileDto.ProfileResponse, error)
}

type serviceImpl struct {
	authRepo    repository.AuthUser
	profileRepo profileRepo.Profile
	cfg         *config.Config
	cache       cache.Cache
	kafkaClient kafka.Client
	jwtService  jwt.JWT
	google      oauth.Google
	notifier    notificationService.Notifier
	otel        otel.Otel
}

func New(
	authRepo repository.AuthUser,
	profileRepo profileRepo.Profile,
	cfg *config.Config,
	cache cache.Cache,
	kafkaClient kafka.Client,
	jwtService jwt.JWT,
	google oauth.Google,
	notifier notificationService.Notifier,
	otel otel.Otel,
) Session {
	return &serviceImpl{
		authRepo:    authRepo,
		profileRepo: profileRepo,
		cfg:         cfg,
		cache:       cache,
		kafkaClient: kafkaClient,
		jwtService:  jwtService,
		google:      google,
		notifier:    notifier,
		otel:        otel,
	}
}

// Initialize resolves a previously stored access token into a session. An
// absent or invalid token yields an anonymous session, never an error.
func (s *serviceImpl) Initialize(ctx context.Context, accessToken string) (res dto.SessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Initialize")
	defer scope.End()
	defer scope.TraceIfError(err)

	if accessToken == constant.Empty {
		return dto.AnonymousSession(), nil
	}

	claims, err := s.jwtService.ValidateToken(accessToken, jwt.AccessToken)
	if err != nil {
		log.Info().Err(err).Msg("stored token no longer valid, starting anonymous session")

		return dto.AnonymousSession(), nil
	}

	profile, err := s.fetchProfile(ctx, claims.UserID)
	if err != nil {
		return res, err
	}

	res.Status = dto.StatusAuthenticated
	res.WithProfile(profile)

	return res, nil
}

func (s *serviceImpl) SignUp(ctx context.Context, req dto.SignUpRequest) (res dto.SessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SignUp")
	defer scope.End()
	defer scope.TraceIfError(err)

	exists, err := s.authRepo.Exist(ctx, s.emailFilter(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if auth user exists")

		return res, fmt.Errorf("failed to check if auth user exists: %w", err)
	}

	if exists {
		return res, failure.Conflict("email already registered") //nolint:wrapcheck
	}

	passwordHash, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	authUser := req.ToAuthUserModel(passwordHash)
	if err = s.authRepo.Insert(ctx, authUser); err != nil {
		log.Error().Err(err).Msg("failed to create auth user")

		return res, fmt.Errorf("failed to create auth user: %w", err)
	}

	role := req.Role
	if role == constant.Empty {
		role = constant.RoleGuest
	}

	city := req.City
	if city == constant.Empty {
		city = constant.ProvisionDefaultCity
	}

	profile := newProfile(authUser.ID, req.FullName, role, city)
	if err = s.profileRepo.Insert(ctx, profile); err != nil {
		log.Error().Err(err).Msg("failed to create profile")

		return res, fmt.Errorf("failed to create profile: %w", err)
	}

	s.notifier.Push(ctx, profile.ID, notificationModel.TypeWelcome, "Welcome to Guide", "Your account is ready. Find an experience near you.", nil)

	return s.openSession(ctx, authUser, profile)
}

func (s *serviceImpl) SignIn(ctx context.Context, req dto.SignInRequest) (res dto.SessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SignIn")
	defer scope.End()
	defer scope.TraceIfError(err)

	authUser, err := s.authRepo.Get(ctx, s.emailFilter(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to get auth user")

		return res, fmt.Errorf("failed to get auth user: %w", err)
	}

	if authUser.ID == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("sign-in attempt with unknown email")

		return res, failure.BadRequestFromString("invalid email or password") //nolint:wrapcheck
	}

	if err := password.Verify(req.Password, authUser.PasswordHash); err != nil {
		log.Warn().Str("email", req.Email).Msg("sign-in attempt with wrong password")

		return res, failure.BadRequestFromString("invalid email or password") //nolint:wrapcheck
	}

	profile, err := s.fetchProfile(ctx, authUser.ID)
	if err != nil {
		return res, err
	}

	return s.openSession(ctx, authUser, profile)
}

// GoogleAuthURL builds the provider redirect for the OAuth code flow. The
// state it embeds is stored server-side so the callback can prove it came
// from a redirect this instance issued.
func (s *serviceImpl) GoogleAuthURL(ctx context.Context) (res string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GoogleAuthURL")
	defer scope.End()
	defer scope.TraceIfError(err)

	state := uuid.NewString()

	if err = s.cache.Save(ctx, shared.BuildCacheKey(cacheOAuthState, state), state, s.cfg.OAuth.Google.StateTTLSeconds); err != nil {
		log.Error().Err(err).Msg("failed to store oauth state")

		return res, fmt.Errorf("failed to store oauth state: %w", err)
	}

	return s.google.AuthURL(state), nil
}

// SignInWithGoogle finishes the OAuth code flow. The identity is taken
// from the verified ID token returned by the code exchange, never from
// the request body.
func (s *serviceImpl) SignInWithGoogle(ctx context.Context, req dto.OAuthSignInRequest) (res dto.SessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SignInWithGoogle")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.consumeState(ctx, req.State); err != nil {
		return res, err
	}

	identity, err := s.google.Exchange(ctx, req.Code)
	if err != nil {
		log.Warn().Err(err).Msg("google code exchange failed")

		return res, failure.Unauthorized("google sign-in could not be verified") //nolint:wrapcheck
	}

	authUser, err := s.authRepo.Get(ctx, s.emailFilter(strings.ToLower(identity.Email)))
	if err != nil {
		log.Error().Err(err).Msg("failed to get auth user")

		return res, fmt.Errorf("failed to get auth user: %w", err)
	}

	if authUser.ID == constant.Empty {
		authUser = newOAuthUser(identity.Email)

		if err = s.authRepo.Insert(ctx, authUser); err != nil {
			if !isUniqueViolation(err) {
				log.Error().Err(err).Msg("failed to create oauth user")

				return res, fmt.Errorf("failed to create oauth user: %w", err)
			}

			// Another sign-in for the same email won the race.
			authUser, err = s.authRepo.Get(ctx, s.emailFilter(strings.ToLower(identity.Email)))
			if err != nil {
				return res, fmt.Errorf("failed to get auth user: %w", err)
			}
		}
	}

	profile, err := s.ProvisionOAuthProfile(ctx, authUser, identity.DisplayName())
	if err != nil {
		return res, err
	}

	return s.openSession(ctx, authUser, profile)
}

// consumeState accepts each issued state exactly once. An unknown state
// means the callback did not originate from a redirect we handed out.
func (s *serviceImpl) consumeState(ctx context.Context, state string) error {
	cacheKey := shared.BuildCacheKey(cacheOAuthState, state)

	var stored string
	if err := s.cache.Get(ctx, cacheKey, &stored); err != nil || stored != state {
		log.Warn().Msg("oauth callback with unknown or expired state")

		return failure.Unauthorized("unknown or expired oauth state") //nolint:wrapcheck
	}

	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		log.Error().Err(err).Msg("failed to drop oauth state")
	}

	return nil
}

// ProvisionOAuthProfile guarantees a profile row exists for an OAuth
// principal. It is idempotent: repeat sign-ins return the existing row
// untouched, including under concurrent provisioning.
func (s *serviceImpl) ProvisionOAuthProfile(ctx context.Context, authUser model.AuthUser, fullName string) (profile profileModel.Profile, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ProvisionOAuthProfile")
	defer scope.End()
	defer scope.TraceIfError(err)

	profile, err = s.profileRepo.Get(ctx, s.authUIDFilter(authUser.ID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get profile")

		return profile, fmt.Errorf("failed to get profile: %w", err)
	}

	if profile.ID != constant.Empty {
		return profile, nil
	}

	if fullName == constant.Empty {
		fullName = constant.ProvisionDefaultName
	}

	profile = newProfile(authUser.ID, fullName, constant.RoleGuest, constant.ProvisionDefaultCity)

	if err = s.profileRepo.Insert(ctx, profile); err != nil {
		if !isUniqueViolation(err) {
			log.Error().Err(err).Msg("failed to provision profile")

			return profile, fmt.Errorf("failed to provision profile: %w", err)
		}

		profile, err = s.profileRepo.Get(ctx, s.authUIDFilter(authUser.ID))
		if err != nil {
			return profile, fmt.Errorf("failed to get profile: %w", err)
		}

		return profile, nil
	}

	s.notifier.Push(ctx, profile.ID, notificationModel.TypeWelcome, "Welcome to Guide", "Your account is ready. Find an experience near you.", nil)

	return profile, nil
}

// EnsureProfile runs provisioning for a principal known only by id.
// Sign-in events relayed from other instances land here.
func (s *serviceImpl) EnsureProfile(ctx context.Context, authUID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".EnsureProfile")
	defer scope.End()
	defer scope.TraceIfError(err)

	authUser, err := s.authRepo.Get(ctx, shared.FilterByID(authUID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get auth user")

		return fmt.Errorf("failed to get auth user: %w", err)
	}

	if authUser.ID == constant.Empty {
		return failure.NotFound("auth user not found") //nolint:wrapcheck
	}

	local, _, _ := strings.Cut(authUser.Email, "@")

	_, err = s.ProvisionOAuthProfile(ctx, authUser, local)

	return err
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.SessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	tokenPair, err := s.jwtService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token") //nolint:wrapcheck
	}

	res.Status = dto.StatusAuthenticated
	res.FromTokenPair(tokenPair)

	return res, nil
}

// SignOut drops every cached entry so the next principal on this instance
// starts cold, then announces the sign-out on the session topic.
func (s *serviceImpl) SignOut(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SignOut")
	defer scope.End()
	defer scope.TraceIfError(err)

	authUID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.cache.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear cache on sign-out")

		return fmt.Errorf("failed to clear cache on sign-out: %w", err)
	}

	s.publishEvent(ctx, constant.SessionEventSignedOut, authUID)

	return nil
}

func (s *serviceImpl) Profile(ctx context.Context) (res profileDto.ProfileResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Profile")
	defer scope.End()
	defer scope.TraceIfError(err)

	authUID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if authUID == constant.Empty {
		return res, failure.Unauthorized("no active session") //nolint:wrapcheck
	}

	profile, err := s.fetchProfile(ctx, authUID)
	if err != nil {
		return res, err
	}

	res.FromModel(profile)

	return res, nil
}

func (s *serviceImpl) UpdateProfile(ctx context.Context, req profileDto.UpdateProfileRequest) (res profileDto.ProfileResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateProfile")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (profileDto.UpdateProfileRequest{}) {
		return res, failure.BadRequestFromString("update request cannot be empty") //nolint:wrapcheck
	}

	authUID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if authUID == constant.Empty {
		return res, failure.Unauthorized("no active session") //nolint:wrapcheck
	}

	filter := s.authUIDFilter(authUID)

	exists, err := s.profileRepo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if profile exists")

		return res, fmt.Errorf("failed to check if profile exists: %w", err)
	}

	if !exists {
		return res, failure.NotFound("profile not found") //nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req)
	if err = s.profileRepo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update profile")

		return res, fmt.Errorf("failed to update profile: %w", err)
	}

	if err = s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetProfile, authUID)); err != nil {
		log.Error().Err(err).Msg("failed to invalidate profile cache")
	}

	profile, err := s.fetchProfile(ctx, authUID)
	if err != nil {
		return res, err
	}

	res.FromModel(profile)

	return res, nil
}

// fetchProfile is the cache-first profile read shared by every session
// operation.
func (s *serviceImpl) fetchProfile(ctx context.Context, authUID string) (profile profileModel.Profile, err error) {
	cacheKey := shared.BuildCacheKey(cacheGetProfile, authUID)

	err = s.cache.Get(ctx, cacheKey, &profile)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for profile")

		return profile, nil
	}

	profile, err = s.profileRepo.Get(ctx, s.authUIDFilter(authUID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get profile")

		return profile, fmt.Errorf("failed to get profile: %w", err)
	}

	if profile.ID == constant.Empty {
		return profile, failure.NotFound("profile not found") //nolint:wrapcheck
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, profile, s.cfg.Cache.TTL.Profile); err != nil {
			log.Error().Err(err).Msg("failed to save profile to cache")
		}
	}()

	return profile, nil
}

func (s *serviceImpl) openSession(ctx context.Context, authUser model.AuthUser, profile profileModel.Profile) (res dto.SessionResponse, err error) {
	tokenPair, err := s.jwtService.GenerateTokenPair(authUser.ID, authUser.Email, profile.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.publishEvent(ctx, constant.SessionEventSignedIn, authUser.ID)

	res.Status = dto.StatusAuthenticated
	res.FromTokenPair(tokenPair)
	res.WithProfile(profile)

	return res, nil
}

func (s *serviceImpl) publishEvent(ctx context.Context, event, authUID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		msg := kafka.Message{
			Key: authUID,
			Value: dto.SessionEvent{
				Event:   event,
				AuthUID: authUID,
				At:      timezone.Format(timezone.Now(), constant.DateFormat),
			},
		}

		if err := s.kafkaClient.SendMessages(c, s.cfg.Kafka.Topic.Session, msg); err != nil {
			log.Error().Err(err).Str("event", event).Msg("failed to publish session event")
		}
	}()
}

func (s *serviceImpl) emailFilter(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    email,
				Table:    model.TableName,
			},
		},
	}
}

func (s *serviceImpl) authUIDFilter(authUID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    profileModel.FieldAuthUID,
				Operator: gDto.FilterOperatorEq,
				Value:    authUID,
				Table:    profileModel.TableName,
			},
		},
	}
}

func newProfile(authUID, fullName, role, city string) profileModel.Profile {
	now := timezone.Now()

	return profileModel.Profile{
		ID:       uuid.NewString(),
		AuthUID:  authUID,
		FullName: fullName,
		Role:     role,
		City:     city,
		Verified: false,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func newOAuthUser(email string) model.AuthUser {
	now := timezone.Now()

	return model.AuthUser{
		ID:       uuid.NewString(),
		Email:    strings.ToLower(email),
		Provider: model.ProviderGoogle,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == constant.PqErrorCodeUniqueViolation
	}

	return false
}
