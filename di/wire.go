//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"guide/config"
	"guide/infras/jwt"
	"guide/infras/kafka"
	"guide/infras/oauth"
	"guide/infras/otel"
	"guide/infras/postgres"
	"guide/infras/s3"
	"guide/shared/cache"
	"guide/transport/http"
	"guide/transport/http/middleware"
	"guide/transport/http/router"

	bookingRepository "guide/internal/domains/booking/repository"
	bookingService "guide/internal/domains/booking/service"
	experienceRepository "guide/internal/domains/experience/repository"
	experienceService "guide/internal/domains/experience/service"
	feedbackRepository "guide/internal/domains/feedback/repository"
	feedbackService "guide/internal/domains/feedback/service"
	messageRepository "guide/internal/domains/message/repository"
	messageService "guide/internal/domains/message/service"
	notificationRepository "guide/internal/domains/notification/repository"
	notificationService "guide/internal/domains/notification/service"
	profileRepository "guide/internal/domains/profile/repository"
	sessionRepository "guide/internal/domains/session/repository"
	sessionService "guide/internal/domains/session/service"
	statsService "guide/internal/domains/stats/service"

	bookingHandler "guide/internal/handlers/booking"
	experienceHandler "guide/internal/handlers/experience"
	messageHandler "guide/internal/handlers/message"
	notificationHandler "guide/internal/handlers/notification"
	sessionHandler "guide/internal/handlers/session"
	statsHandler "guide/internal/handlers/stats"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	jwt.New,
	s3.New,
	kafka.New,
	oauth.NewGoogle,
)

var sharedHelpers = wire.NewSet(
	NewMirror,
	cache.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sessionDomain = wire.NewSet(
	sessionRepository.New,
	profileRepository.New,
	sessionService.New,
	sessionService.NewWatcher,
)

var experienceDomain = wire.NewSet(
	experienceRepository.New,
	experienceService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var messageDomain = wire.NewSet(
	messageRepository.New,
	messageService.New,
)

var feedbackDomain = wire.NewSet(
	feedbackRepository.New,
	feedbackService.New,
)

var statsDomain = wire.NewSet(
	statsService.New,
)

var notificationDomain = wire.NewSet(
	notificationRepository.New,
	notificationService.New,
)

var domains = wire.NewSet(
	sessionDomain,
	experienceDomain,
	bookingDomain,
	messageDomain,
	feedbackDomain,
	statsDomain,
	notificationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	sessionHandler.New,
	experienceHandler.New,
	bookingHandler.New,
	messageHandler.New,
	notificationHandler.New,
	statsHandler.New,
	router.New,
)

func InitializeApp() *App {
	wire.Build(
		configurations,
		infrastructures,
		sharedHelpers,
		middlewares,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
