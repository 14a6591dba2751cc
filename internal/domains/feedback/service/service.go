package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"guide/infras/otel"
	bookingModel "guide/internal/domains/booking/model"
	bookingRepo "guide/internal/domains/booking/repository"
	"guide/internal/domains/feedback/model"
	"guide/internal/domains/feedback/model/dto"
	"guide/internal/domains/feedback/repository"
	notificationModel "guide/internal/domains/notification/model"
	notificationService "guide/internal/domains/notification/service"
	"guide/shared"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
)

// Feedback records one rating per completed booking.
type Feedback interface {
	Create(ctx context.Context, req dto.CreateFeedbackRequest) (dto.FeedbackResponse, error)
	ListForExperience(ctx context.Context, experienceID string) ([]dto.FeedbackResponse, error)
}

type serviceImpl struct {
	repo        repository.Feedback
	bookingRepo bookingRepo.Booking
	notifier    notificationService.Notifier
	otel        otel.Otel
}

func New(repo repository.Feedback, bookingRepo bookingRepo.Booking, notifier notificationService.Notifier, otel otel.Otel) Feedback {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		notifier:    notifier,
		otel:        otel,
	}
}

// Create stores feedback from the guest of a confirmed booking. The
// unique index on booking_id turns a repeat submission into a conflict.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateFeedbackRequest) (res dto.FeedbackResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, _ := ctx.Value(constant.ContextKeyProfileID).(string)
	if profileID == constant.Empty {
		return res, failure.Unauthorized("no active session") //nolint:wrapcheck
	}

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(req.BookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	if booking.GuestID != profileID {
		return res, failure.Forbidden("only the guest of this booking can leave feedback") //nolint:wrapcheck
	}

	if booking.Status != bookingModel.StatusConfirmed {
		return res, failure.BadRequestFromString("feedback requires a confirmed booking") //nolint:wrapcheck
	}

	feedback := req.ToModel(booking.ExperienceID, booking.GuestID, booking.HostID)

	if err = s.repo.Insert(ctx, feedback); err != nil {
		if isUniqueViolation(err) {
			return res, failure.Conflict("feedback for this booking already exists") //nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to insert feedback")

		return res, fmt.Errorf("failed to insert feedback: %w", err)
	}

	s.notifier.Push(ctx, booking.HostID, notificationModel.TypeNewFeedback, "New feedback",
		fmt.Sprintf("A guest rated %s", booking.ExperienceTitle),
		map[string]any{"experience_id": booking.ExperienceID})

	res.FromModel(feedback)

	return res, nil
}

func (s *serviceImpl) ListForExperience(ctx context.Context, experienceID string) (res []dto.FeedbackResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListForExperience")
	defer scope.End()
	defer scope.TraceIfError(err)

	params := gDto.QueryParams{
		SortBy:  fmt.Sprintf("%s.%s", model.TableName, model.FieldCreatedAt),
		SortDir: gDto.SortDirDesc,
	}

	feedbacks, err := s.repo.GetAll(ctx, params, experienceFilter(experienceID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get feedback")

		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	return dto.FromModels(feedbacks), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == constant.PqErrorCodeUniqueViolation
	}

	return false
}

func experienceFilter(experienceID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldExperienceID,
				Operator: gDto.FilterOperatorEq,
				Value:    experienceID,
				Table:    model.TableName,
			},
		},
	}
}
