package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"guide/config"
	"guide/infras/kafka"
	"guide/infras/otel"
	bookingModel "guide/internal/domains/booking/model"
	bookingRepo "guide/internal/domains/booking/repository"
	"guide/internal/domains/message/model"
	"guide/internal/domains/message/model/dto"
	"guide/internal/domains/message/repository"
	notificationModel "guide/internal/domains/notification/model"
	notificationService "guide/internal/domains/notification/service"
	profileModel "guide/internal/domains/profile/model"
	profileRepo "guide/internal/domains/profile/repository"
	"guide/shared"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
)

// Message handles the per-booking conversation between guest and host.
type Message interface {
	LoadHistory(ctx context.Context, bookingID string) ([]dto.MessageResponse, error)
	Send(ctx context.Context, bookingID string, req dto.SendMessageRequest) (dto.MessageResponse, error)
	Channel(ctx context.Context, bookingID string) (*Channel, error)
}

type serviceImpl struct {
	repo        repository.Message
	bookingRepo bookingRepo.Booking
	profileRepo profileRepo.Profile
	cfg         *config.Config
	kafkaClient kafka.Client
	notifier    notificationService.Notifier
	otel        otel.Otel
}

func New(
	repo repository.Message,
	bookingRepo bookingRepo.Booking,
	profileRepo profileRepo.Profile,
	cfg *config.Config,
	kafkaClient kafka.Client,
	notifier notificationService.Notifier,
	otel otel.Otel,
) Message {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		profileRepo: profileRepo,
		cfg:         cfg,
		kafkaClient: kafkaClient,
		notifier:    notifier,
		otel:        otel,
	}
}

// LoadHistory returns the booking's conversation oldest first. Only the
// booking's guest or host may read it.
func (s *serviceImpl) LoadHistory(ctx context.Context, bookingID string) (res []dto.MessageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".LoadHistory")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, _, err = s.requireParticipant(ctx, bookingID); err != nil {
		return nil, err
	}

	params := gDto.QueryParams{
		SortBy:  fmt.Sprintf("%s.%s", model.TableName, model.FieldCreatedAt),
		SortDir: gDto.SortDirAsc,
	}

	messages, err := s.repo.GetAll(ctx, params, bookingFilter(bookingID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get messages")

		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	return dto.FromModels(messages), nil
}

// Send validates locally before touching storage: a blank body never
// reaches the database.
func (s *serviceImpl) Send(ctx context.Context, bookingID string, req dto.SendMessageRequest) (res dto.MessageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Send")
	defer scope.End()
	defer scope.TraceIfError(err)

	if strings.TrimSpace(req.Body) == constant.Empty {
		return res, failure.BadRequestFromString("message body cannot be empty") //nolint:wrapcheck
	}

	if bookingID == constant.Empty {
		return res, failure.BadRequestFromString("booking id is required") //nolint:wrapcheck
	}

	profileID, booking, err := s.requireParticipant(ctx, bookingID)
	if err != nil {
		return res, err
	}

	message := req.ToModel(bookingID, profileID)
	if err = s.repo.Insert(ctx, message); err != nil {
		log.Error().Err(err).Msg("failed to insert message")

		return res, fmt.Errorf("failed to insert message: %w", err)
	}

	message.SenderName = s.senderName(ctx, profileID)

	res.FromModel(message)
	s.publishInserted(ctx, res)

	recipient := booking.GuestID
	if profileID == booking.GuestID {
		recipient = booking.HostID
	}

	s.notifier.Push(ctx, recipient, notificationModel.TypeNewMessage, "New message",
		fmt.Sprintf("%s sent you a message", message.SenderName),
		map[string]any{"booking_id": bookingID})

	return res, nil
}

// Channel opens a live view over one booking's conversation for the
// calling participant.
func (s *serviceImpl) Channel(ctx context.Context, bookingID string) (*Channel, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Channel")
	defer scope.End()

	profileID, _, err := s.requireParticipant(ctx, bookingID)
	if err != nil {
		scope.TraceError(err)

		return nil, err
	}

	return newChannel(bookingID, profileID, s), nil
}

func (s *serviceImpl) requireParticipant(ctx context.Context, bookingID string) (string, bookingModel.Booking, error) {
	profileID, _ := ctx.Value(constant.ContextKeyProfileID).(string)
	if profileID == constant.Empty {
		return constant.Empty, bookingModel.Booking{}, failure.Unauthorized("no active session") //nolint:wrapcheck
	}

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return constant.Empty, booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return constant.Empty, booking, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	if booking.GuestID != profileID && booking.HostID != profileID {
		return constant.Empty, booking, failure.ForbiddenError //nolint:wrapcheck
	}

	return profileID, booking, nil
}

func (s *serviceImpl) senderName(ctx context.Context, profileID string) string {
	profile, err := s.profileRepo.Get(ctx, shared.FilterByID(profileID, profileModel.FieldID, profileModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get sender profile")

		return constant.Empty
	}

	return profile.FullName
}

func (s *serviceImpl) publishInserted(ctx context.Context, res dto.MessageResponse) {
	go func() {
		c := context.WithoutCancel(ctx)

		var event dto.MessageEvent
		event.FromResponse(res)

		err := s.kafkaClient.SendMessages(c, s.cfg.Kafka.Topic.MessageInserted, kafka.Message{
			Key:   res.BookingID,
			Value: event,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to publish message event")
		}
	}()
}

func bookingFilter(bookingID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldBookingID,
				Operator: gDto.FilterOperatorEq,
				Value:    bookingID,
				Table:    model.TableName,
			},
		},
	}
}
