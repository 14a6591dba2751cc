package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"guide/infras/jwt"
	"guide/infras/otel"
	profileModel "guide/internal/domains/profile/model"
	profileRepo "guide/internal/domains/profile/repository"
	"guide/shared"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
	"guide/transport/http/response"
)

// Auth resolves the bearer token to a principal. Required rejects
// anonymous requests; Optional lets them through without session values.
type Auth interface {
	Required(next http.Handler) http.Handler
	Optional(next http.Handler) http.Handler
}

type authImpl struct {
	jwtService  jwt.JWT
	profileRepo profileRepo.Profile
	otel        otel.Otel
}

func NewAuthMiddleware(jwtService jwt.JWT, profileRepo profileRepo.Profile, otel otel.Otel) Auth {
	return &authImpl{
		jwtService:  jwtService,
		profileRepo: profileRepo,
		otel:        otel,
	}
}

func (m *authImpl) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "auth.middleware")

		ctx, err := m.resolve(ctx, request)
		if err != nil {
			scope.TraceError(err)
			scope.End()
			response.WithError(writer, err)

			return
		}

		scope.End()
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// Optional resolves the session when a token is present and silently
// continues anonymous otherwise. Invalid tokens are still rejected so a
// client never mistakes a broken session for a missing one.
func (m *authImpl) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get(constant.RequestHeaderAuthorization) == constant.Empty {
			next.ServeHTTP(writer, request)

			return
		}

		m.Required(next).ServeHTTP(writer, request)
	})
}

func (m *authImpl) resolve(ctx context.Context, request *http.Request) (context.Context, error) {
	authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
	if authHeader == constant.Empty {
		return ctx, failure.Unauthorized("missing authorization header") //nolint:wrapcheck
	}

	tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return ctx, failure.Unauthorized("invalid authorization header format") //nolint:wrapcheck
	}

	claims, err := m.jwtService.ValidateToken(tokenString, jwt.AccessToken)
	if err != nil {
		var message string

		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			message = "token has expired"
		case errors.Is(err, jwt.ErrInvalidToken):
			message = "invalid token"
		case errors.Is(err, jwt.ErrInvalidClaim):
			message = "invalid token claims"
		default:
			message = "token validation failed"
		}

		return ctx, failure.Unauthorized(message) //nolint:wrapcheck
	}

	if claims.UserID == constant.Empty || claims.Email == constant.Empty {
		return ctx, failure.Unauthorized("invalid token claims") //nolint:wrapcheck
	}

	profile, err := m.profileRepo.Get(ctx, authUIDFilter(claims.UserID))
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve profile for session")

		return ctx, failure.Unauthorized("failed to resolve session") //nolint:wrapcheck
	}

	if profile.ID == constant.Empty {
		return ctx, failure.Unauthorized("no profile for this session") //nolint:wrapcheck
	}

	ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, profile.Role)
	ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)
	ctx = context.WithValue(ctx, constant.ContextKeyProfileID, profile.ID)

	return ctx, nil
}

func authUIDFilter(authUID string) gDto.FilterGroup {
	return shared.FilterByID(authUID, profileModel.FieldAuthUID, profileModel.TableName)
}
