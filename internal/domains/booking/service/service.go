package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"guide/config"
	"guide/infras/otel"
	"guide/internal/domains/booking/model"
	"guide/internal/domains/booking/model/dto"
	"guide/internal/domains/booking/repository"
	experienceModel "guide/internal/domains/experience/model"
	experienceRepo "guide/internal/domains/experience/repository"
	notificationModel "guide/internal/domains/notification/model"
	notificationService "guide/internal/domains/notification/service"
	"guide/shared"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
	"guide/shared/timezone"
)

// Booking manages the request/confirm lifecycle between guests and hosts.
// Reads are always fresh: a stale booking list is worse than a slow one.
// Status transitions are host decisions; guests only open bookings.
type Booking interface {
	ListForProfile(ctx context.Context, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Confirm(ctx context.Context, id string) error
	Decline(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo           repository.Booking
	experienceRepo experienceRepo.Experience
	cfg            *config.Config
	notifier       notificationService.Notifier
	otel           otel.Otel
}

func New(repo repository.Booking, experienceRepo experienceRepo.Experience, cfg *config.Config, notifier notificationService.Notifier, otel otel.Otel) Booking {
	return &serviceImpl{
		repo:           repo,
		experienceRepo: experienceRepo,
		cfg:            cfg,
		notifier:       notifier,
		otel:           otel,
	}
}

// ListForProfile returns the caller's side of the booking ledger: guests
// see the bookings they made, hosts see bookings against their
// experiences.
func (s *serviceImpl) ListForProfile(ctx context.Context, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListForProfile")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, role, err := principal(ctx)
	if err != nil {
		return res, err
	}

	var filter gDto.FilterGroup
	if role == constant.RoleHost {
		filter = hostBookingsFilter(profileID)
	} else {
		filter = guestBookingsFilter(profileID)
	}

	if params.Page <= 0 {
		params.Page = constant.DefaultValuePage
	}

	if params.Limit <= 0 {
		params.Limit = constant.DefaultValueLimit
	}

	if params.SortBy == constant.Empty {
		params.SortBy = fmt.Sprintf("%s.%s", model.TableName, constant.FieldCreatedAt)
	}

	if params.SortDir == constant.Empty {
		params.SortDir = gDto.SortDirDesc
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.Bookings = dto.FromModels(bookings)
	res.TotalData = total
	res.TotalPage = shared.CalculateTotalPage(total, params.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, _, err := principal(ctx)
	if err != nil {
		return res, err
	}

	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return res, err
	}

	if booking.GuestID != profileID && booking.HostID != profileID {
		return res, failure.ForbiddenError //nolint:wrapcheck
	}

	res.FromModel(booking)

	return res, nil
}

// Create opens a pending booking. Hosts cannot book their own experience,
// and a guest holds at most one pending booking per experience.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, _, err := principal(ctx)
	if err != nil {
		return res, err
	}

	experience, err := s.experienceRepo.Get(ctx, shared.FilterByID(req.ExperienceID, experienceModel.FieldID, experienceModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get experience")

		return res, fmt.Errorf("failed to get experience: %w", err)
	}

	if experience.ID == constant.Empty || !experience.Published {
		return res, failure.NotFound("experience not found") //nolint:wrapcheck
	}

	if experience.HostID == profileID {
		return res, failure.BadRequestFromString("hosts cannot book their own experience") //nolint:wrapcheck
	}

	pendingExists, err := s.repo.Exist(ctx, pendingDuplicateFilter(profileID, req.ExperienceID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check for pending booking")

		return res, fmt.Errorf("failed to check for pending booking: %w", err)
	}

	if pendingExists {
		return res, failure.Conflict("a pending booking for this experience already exists") //nolint:wrapcheck
	}

	booking := req.ToModel(profileID)
	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ExperienceTitle = experience.Title
	booking.ExperienceCity = experience.City
	booking.HostID = experience.HostID

	s.notifier.Push(ctx, experience.HostID, notificationModel.TypeBookingRequest, "New booking request",
		fmt.Sprintf("A guest requested %s", experience.Title),
		map[string]any{"booking_id": booking.ID})

	res.FromModel(booking)

	return res, nil
}

// Confirm moves a pending booking to confirmed. Only the host of the
// booked experience may confirm.
func (s *serviceImpl) Confirm(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.StatusConfirmed)
}

// Decline moves a pending booking to cancelled on behalf of the host.
func (s *serviceImpl) Decline(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.StatusCancelled)
}

// transition applies a status change to a pending booking. Deciding a
// booking belongs to the host alone. The update is guarded by a status
// filter so a concurrent transition cannot double apply; pending is the
// only state with an exit.
func (s *serviceImpl) transition(ctx context.Context, id, next string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".transition")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, _, err := principal(ctx)
	if err != nil {
		return err
	}

	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return err
	}

	if booking.HostID != profileID {
		return failure.Forbidden("only the host can decide this booking") //nolint:wrapcheck
	}

	if booking.Terminal() {
		return failure.Conflict(fmt.Sprintf("booking is already %s", booking.Status)) //nolint:wrapcheck
	}

	updatedFields := map[string]any{
		model.FieldStatus:       next,
		constant.FieldUpdatedAt: timezone.Now(),
	}

	if err = s.repo.Update(ctx, updatedFields, pendingTransitionFilter(id)); err != nil {
		log.Error().Err(err).Msg("failed to transition booking")

		return fmt.Errorf("failed to transition booking: %w", err)
	}

	kind := notificationModel.TypeBookingCancelled
	title := "Booking declined"
	body := fmt.Sprintf("Your booking for %s was declined", booking.ExperienceTitle)

	if next == model.StatusConfirmed {
		kind = notificationModel.TypeBookingConfirmed
		title = "Booking confirmed"
		body = fmt.Sprintf("Your booking for %s is confirmed", booking.ExperienceTitle)
	}

	s.notifier.Push(ctx, booking.GuestID, kind, title, body, map[string]any{"booking_id": booking.ID})

	return nil
}

func (s *serviceImpl) loadBooking(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	return booking, nil
}

func principal(ctx context.Context) (profileID, role string, err error) {
	profileID, _ = ctx.Value(constant.ContextKeyProfileID).(string)
	role, _ = ctx.Value(constant.ContextKeyUserRole).(string)

	if profileID == constant.Empty {
		return constant.Empty, constant.Empty, failure.Unauthorized("no active session") //nolint:wrapcheck
	}

	return profileID, role, nil
}

func guestBookingsFilter(profileID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldGuestID,
				Operator: gDto.FilterOperatorEq,
				Value:    profileID,
				Table:    model.TableName,
			},
		},
	}
}

func hostBookingsFilter(profileID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				ArgName:  "booking_host_id",
				Field:    experienceModel.FieldHostID,
				Operator: gDto.FilterOperatorEq,
				Value:    profileID,
				Table:    experienceModel.TableName,
			},
		},
	}
}

func pendingDuplicateFilter(guestID, experienceID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldGuestID,
				Operator: gDto.FilterOperatorEq,
				Value:    guestID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldExperienceID,
				Operator: gDto.FilterOperatorEq,
				Value:    experienceID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    model.StatusPending,
				Table:    model.TableName,
			},
		},
	}
}

func pendingTransitionFilter(id string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Operator: gDto.FilterOperatorEq,
				Value:    id,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    model.StatusPending,
				Table:    model.TableName,
			},
		},
	}
}
