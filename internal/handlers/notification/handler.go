package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guide/infras/otel"
	"guide/internal/domains/notification/service"
	"guide/shared/constant"
	"guide/transport/http/middleware"
	"guide/transport/http/response"
)

type Handler struct {
	service service.Notifier
	auth    middleware.Auth
	otel    otel.Otel
}

func New(service service.Notifier, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		auth:    auth,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Group(func(routerGroup chi.Router) {
		routerGroup.Use(handler.auth.Required)

		routerGroup.Get("/notifications", handler.GetNotifications)
		routerGroup.Post("/notifications/{id}/read", handler.MarkNotificationRead)
		routerGroup.Post("/notifications/read-all", handler.MarkAllNotificationsRead)
		routerGroup.Delete("/notifications/{id}", handler.DeleteNotification)
	})
}

// GetNotifications returns the caller's notification feed.
// @Summary List notifications
// @Description Latest notifications for the signed-in profile, newest first, with the unread count.
// @Tags Notification
// @Produce json
// @Success 200 {object} response.Data[dto.GetNotificationsResponse] "Notifications"
// @Failure 401 {object} response.Error
// @Router /v1/notifications [get]
// @Security BearerAuth
func (handler *Handler) GetNotifications(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetNotifications")
	defer scope.End()

	notifications, err := handler.service.ListForProfile(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get notifications")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, notifications)
}

// MarkNotificationRead marks one of the caller's notifications as read.
// @Summary Mark a notification read
// @Tags Notification
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Message "Notification marked read"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/notifications/{id}/read [post]
// @Security BearerAuth
func (handler *Handler) MarkNotificationRead(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkNotificationRead")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.MarkRead(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to mark notification read")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Notification marked read")
}

// MarkAllNotificationsRead clears the caller's unread counter.
// @Summary Mark every notification read
// @Tags Notification
// @Produce json
// @Success 200 {object} response.Message "Notifications marked read"
// @Failure 401 {object} response.Error
// @Router /v1/notifications/read-all [post]
// @Security BearerAuth
func (handler *Handler) MarkAllNotificationsRead(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkAllNotificationsRead")
	defer scope.End()

	if err := handler.service.MarkAllRead(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to mark notifications read")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Notifications marked read")
}

// DeleteNotification removes one of the caller's notifications.
// @Summary Delete a notification
// @Tags Notification
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Message "Notification deleted"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/notifications/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteNotification(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteNotification")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete notification")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Notification deleted")
}
