package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guide/infras/otel"
	"guide/internal/domains/booking/model/dto"
	"guide/internal/domains/booking/service"
	feedbackDto "guide/internal/domains/feedback/model/dto"
	feedbackService "guide/internal/domains/feedback/service"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/validator"
	"guide/transport/http/middleware"
	"guide/transport/http/response"
)

type Handler struct {
	service         service.Booking
	feedbackService feedbackService.Feedback
	auth            middleware.Auth
	otel            otel.Otel
}

func New(service service.Booking, feedbackService feedbackService.Feedback, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service:         service,
		feedbackService: feedbackService,
		auth:            auth,
		otel:            otel,
	}
}

// Router registers booking paths directly on the shared router; the
// message handler hangs its routes off the same /bookings/{id} subtree.
func (handler *Handler) Router(router chi.Router) {
	router.Group(func(routerGroup chi.Router) {
		routerGroup.Use(handler.auth.Required)

		routerGroup.Get("/bookings", handler.GetBookings)
		routerGroup.Post("/bookings", handler.CreateBooking)
		routerGroup.Get("/bookings/{id}", handler.GetBookingByID)
		routerGroup.Post("/bookings/{id}/confirm", handler.ConfirmBooking)
		routerGroup.Post("/bookings/{id}/decline", handler.DeclineBooking)
		routerGroup.Post("/bookings/{id}/feedback", handler.CreateFeedback)
	})
}

// GetBookings lists the caller's side of the booking ledger.
// @Summary List bookings
// @Description Guests see bookings they made; hosts see bookings against their experiences.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "Bookings"
// @Failure 401 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	bookings, err := handler.service.ListForProfile(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, bookings)
}

// CreateBooking opens a pending booking for a published experience.
// @Summary Create a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Created booking"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, booking)
}

// GetBookingByID returns one booking visible to the caller.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, booking)
}

// ConfirmBooking moves a pending booking to confirmed.
// @Summary Confirm a booking
// @Description Host-only; allowed solely from the pending state.
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message "Booking confirmed successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/confirm [post]
// @Security BearerAuth
func (handler *Handler) ConfirmBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmBooking")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Confirm(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to confirm booking")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Booking confirmed successfully")
}

// DeclineBooking cancels a pending booking on behalf of the host.
// @Summary Decline a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message "Booking declined successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/decline [post]
// @Security BearerAuth
func (handler *Handler) DeclineBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeclineBooking")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Decline(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decline booking")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Booking declined successfully")
}

// CreateFeedback stores the guest's rating for a confirmed booking.
// @Summary Leave feedback for a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body feedbackDto.CreateFeedbackRequest true "Feedback"
// @Success 201 {object} response.Data[feedbackDto.FeedbackResponse] "Stored feedback"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/feedback [post]
// @Security BearerAuth
func (handler *Handler) CreateFeedback(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateFeedback")
	defer scope.End()

	req := feedbackDto.CreateFeedbackRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	req.BookingID = chi.URLParam(request, constant.RequestParamID)

	feedback, err := handler.feedbackService.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create feedback")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, feedback)
}
