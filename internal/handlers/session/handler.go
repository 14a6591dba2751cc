package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guide/infras/jwt"
	"guide/infras/otel"
	profileDto "guide/internal/domains/profile/model/dto"
	"guide/internal/domains/session/model/dto"
	"guide/internal/domains/session/service"
	"guide/shared/constant"
	"guide/shared/validator"
	"guide/transport/http/middleware"
	"guide/transport/http/response"
)

type Handler struct {
	service service.Session
	auth    middleware.Auth
	otel    otel.Otel
}

func New(service service.Session, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		auth:    auth,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/auth", func(routerGroup chi.Router) {
		routerGroup.Post("/signup", handler.SignUp)
		routerGroup.Post("/signin", handler.SignIn)
		routerGroup.Get("/google", handler.GoogleAuthURL)
		routerGroup.Post("/google/callback", handler.GoogleCallback)
		routerGroup.Post("/refresh", handler.RefreshToken)
		routerGroup.Get("/session", handler.Initialize)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.auth.Required)
			protected.Post("/signout", handler.SignOut)
			protected.Get("/me", handler.Profile)
			protected.Patch("/me", handler.UpdateProfile)
		})
	})
}

// SignUp registers a local account and opens a session.
// @Summary Sign up
// @Description Register with email and password, creating the profile in the requested role.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Sign Up Request"
// @Success 201 {object} response.Data[dto.SessionResponse] "Session opened"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/auth/signup [post]
func (handler *Handler) SignUp(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SignUp")
	defer scope.End()

	req := dto.SignUpRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	session, err := handler.service.SignUp(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to sign up")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, session)
}

// SignIn opens a session for an existing local account.
// @Summary Sign in
// @Description Authenticate with email and password.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Sign In Request"
// @Success 200 {object} response.Data[dto.SessionResponse] "Session opened"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/auth/signin [post]
func (handler *Handler) SignIn(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SignIn")
	defer scope.End()

	req := dto.SignInRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	session, err := handler.service.SignIn(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to sign in")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, session)
}

// GoogleAuthURL returns the Google consent page URL.
// @Summary Google auth URL
// @Description Build the Google OAuth consent URL with a fresh single-use state value.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Data[dto.GoogleAuthURLResponse] "Consent URL"
// @Failure 500 {object} response.Error
// @Router /v1/auth/google [get]
func (handler *Handler) GoogleAuthURL(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GoogleAuthURL")
	defer scope.End()

	authURL, err := handler.service.GoogleAuthURL(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to build google auth url")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, dto.GoogleAuthURLResponse{URL: authURL})
}

// GoogleCallback completes a federated sign-in.
// @Summary Google sign-in callback
// @Description Exchange the authorization code for a verified Google identity and open a session, provisioning a profile on first sign-in.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.OAuthSignInRequest true "Authorization code and state from the provider redirect"
// @Success 200 {object} response.Data[dto.SessionResponse] "Session opened"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/auth/google/callback [post]
func (handler *Handler) GoogleCallback(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GoogleCallback")
	defer scope.End()

	req := dto.OAuthSignInRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	session, err := handler.service.SignInWithGoogle(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to sign in with google")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, session)
}

// RefreshToken rotates the token pair.
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Data[dto.SessionResponse] "New token pair"
// @Failure 401 {object} response.Error
// @Router /v1/auth/refresh [post]
func (handler *Handler) RefreshToken(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RefreshToken")
	defer scope.End()

	req := dto.RefreshTokenRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	session, err := handler.service.RefreshToken(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to refresh token")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, session)
}

// Initialize resolves a stored token into the current session state.
// @Summary Initialize session
// @Description Resolve the bearer token into a session; absent or invalid tokens yield an anonymous session.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Data[dto.SessionResponse] "Session state"
// @Router /v1/auth/session [get]
func (handler *Handler) Initialize(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Initialize")
	defer scope.End()

	accessToken := constant.Empty

	if authHeader := request.Header.Get(constant.RequestHeaderAuthorization); authHeader != constant.Empty {
		token, err := jwt.ExtractTokenFromHeader(authHeader)
		if err == nil {
			accessToken = token
		}
	}

	session, err := handler.service.Initialize(ctx, accessToken)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to initialize session")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, session)
}

// SignOut ends the caller's session.
// @Summary Sign out
// @Description Drop local session state and broadcast the sign-out.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Message "Signed out"
// @Failure 500 {object} response.Error
// @Router /v1/auth/signout [post]
// @Security BearerAuth
func (handler *Handler) SignOut(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SignOut")
	defer scope.End()

	if err := handler.service.SignOut(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to sign out")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Signed out successfully")
}

// Profile returns the caller's profile.
// @Summary Get own profile
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Data[profileDto.ProfileResponse] "Profile"
// @Failure 401 {object} response.Error
// @Router /v1/auth/me [get]
// @Security BearerAuth
func (handler *Handler) Profile(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Profile")
	defer scope.End()

	profile, err := handler.service.Profile(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get profile")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, profile)
}

// UpdateProfile patches the caller's profile.
// @Summary Update own profile
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body profileDto.UpdateProfileRequest true "Profile patch"
// @Success 200 {object} response.Data[profileDto.ProfileResponse] "Updated profile"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/auth/me [patch]
// @Security BearerAuth
func (handler *Handler) UpdateProfile(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateProfile")
	defer scope.End()

	req := profileDto.UpdateProfileRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	profile, err := handler.service.UpdateProfile(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update profile")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, profile)
}
