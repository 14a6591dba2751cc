package message

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guide/infras/otel"
	"guide/internal/domains/message/model/dto"
	"guide/internal/domains/message/service"
	"guide/shared/constant"
	"guide/shared/failure"
	"guide/shared/validator"
	"guide/transport/http/middleware"
	"guide/transport/http/response"
)

type Handler struct {
	service service.Message
	auth    middleware.Auth
	otel    otel.Otel
}

func New(service service.Message, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		auth:    auth,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Group(func(routerGroup chi.Router) {
		routerGroup.Use(handler.auth.Required)

		routerGroup.Get("/bookings/{id}/messages", handler.GetMessages)
		routerGroup.Post("/bookings/{id}/messages", handler.SendMessage)
		routerGroup.Get("/bookings/{id}/messages/stream", handler.StreamMessages)
	})
}

// GetMessages returns the booking's conversation oldest first.
// @Summary Get booking messages
// @Tags Message
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[[]dto.MessageResponse] "Messages"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id}/messages [get]
// @Security BearerAuth
func (handler *Handler) GetMessages(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMessages")
	defer scope.End()

	bookingID := chi.URLParam(request, constant.RequestParamID)

	messages, err := handler.service.LoadHistory(ctx, bookingID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get messages")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, messages)
}

// SendMessage appends one message to the booking's conversation.
// @Summary Send a message
// @Tags Message
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.SendMessageRequest true "Message body"
// @Success 201 {object} response.Data[dto.MessageResponse] "Sent message"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/bookings/{id}/messages [post]
// @Security BearerAuth
func (handler *Handler) SendMessage(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SendMessage")
	defer scope.End()

	bookingID := chi.URLParam(request, constant.RequestParamID)

	req := dto.SendMessageRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	message, err := handler.service.Send(ctx, bookingID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to send message")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, message)
}

// StreamMessages pushes the conversation over server-sent events: the
// stored history first, then live messages until the client disconnects.
// @Summary Stream booking messages
// @Tags Message
// @Produce text/event-stream
// @Param id path string true "Booking ID"
// @Success 200 {string} string "SSE stream of dto.MessageResponse"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id}/messages/stream [get]
// @Security BearerAuth
func (handler *Handler) StreamMessages(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".StreamMessages")
	defer scope.End()

	bookingID := chi.URLParam(request, constant.RequestParamID)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		response.WithError(writer, failure.InternalError(fmt.Errorf("streaming unsupported by connection")))

		return
	}

	channel, err := handler.service.Channel(ctx, bookingID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to open message channel")

		response.WithError(writer, err)

		return
	}

	if err := channel.LoadHistory(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to load message history")

		response.WithError(writer, err)

		return
	}

	channel.Start(ctx)
	defer channel.Stop()

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeEventStream)
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	writer.WriteHeader(http.StatusOK)

	// The snapshot marks its rows delivered; an event applied between
	// Start and here is queued on Updates too and gets dropped below.
	for _, message := range channel.DeliverSnapshot() {
		writeEvent(writer, message)
	}

	flusher.Flush()

	for {
		select {
		case <-request.Context().Done():
			return
		case message, open := <-channel.Updates():
			if !open {
				return
			}

			if !channel.ShouldDeliver(message.ID) {
				continue
			}

			writeEvent(writer, message)
			flusher.Flush()
		}
	}
}

func writeEvent(writer http.ResponseWriter, message dto.MessageResponse) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal message event")

		return
	}

	fmt.Fprintf(writer, "data: %s\n\n", payload)
}
