package router

import (
	"github.com/go-chi/chi/v5"

	"guide/internal/handlers/booking"
	"guide/internal/handlers/experience"
	"guide/internal/handlers/message"
	"guide/internal/handlers/notification"
	"guide/internal/handlers/session"
	"guide/internal/handlers/stats"
)

type DomainHandlers struct {
	Session      session.Handler
	Experience   experience.Handler
	Booking      booking.Handler
	Message      message.Handler
	Notification notification.Handler
	Stats        stats.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Session.Router(routerGroup)
		r.DomainHandlers.Experience.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Message.Router(routerGroup)
		r.DomainHandlers.Notification.Router(routerGroup)
		r.DomainHandlers.Stats.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
