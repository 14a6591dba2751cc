package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"guide/infras/otel"
	bookingModel "guide/internal/domains/booking/model"
	bookingRepo "guide/internal/domains/booking/repository"
	experienceModel "guide/internal/domains/experience/model"
	experienceRepo "guide/internal/domains/experience/repository"
	"guide/internal/domains/stats/model/dto"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
)

// Stats aggregates a host's dashboard numbers straight from the rows.
// No caching: the numbers back decisions, so they must be current.
type Stats interface {
	ForHost(ctx context.Context) (dto.HostStatsResponse, error)
}

type serviceImpl struct {
	experienceRepo experienceRepo.Experience
	bookingRepo    bookingRepo.Booking
	otel           otel.Otel
}

func New(experienceRepo experienceRepo.Experience, bookingRepo bookingRepo.Booking, otel otel.Otel) Stats {
	return &serviceImpl{
		experienceRepo: experienceRepo,
		bookingRepo:    bookingRepo,
		otel:           otel,
	}
}

func (s *serviceImpl) ForHost(ctx context.Context) (res dto.HostStatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ForHost")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, _ := ctx.Value(constant.ContextKeyProfileID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	if profileID == constant.Empty {
		return res, failure.Unauthorized("no active session") //nolint:wrapcheck
	}

	if role != constant.RoleHost {
		return res, failure.Forbidden("stats are only available to hosts") //nolint:wrapcheck
	}

	res.TotalExperiences, err = s.experienceRepo.Count(ctx, hostExperiencesFilter(profileID, false))
	if err != nil {
		log.Error().Err(err).Msg("failed to count experiences")

		return dto.HostStatsResponse{}, fmt.Errorf("failed to count experiences: %w", err)
	}

	res.PublishedExperiences, err = s.experienceRepo.Count(ctx, hostExperiencesFilter(profileID, true))
	if err != nil {
		log.Error().Err(err).Msg("failed to count published experiences")

		return dto.HostStatsResponse{}, fmt.Errorf("failed to count published experiences: %w", err)
	}

	res.TotalBookings, err = s.bookingRepo.Count(ctx, hostBookingsFilter(profileID, constant.Empty))
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return dto.HostStatsResponse{}, fmt.Errorf("failed to count bookings: %w", err)
	}

	res.PendingBookings, err = s.bookingRepo.Count(ctx, hostBookingsFilter(profileID, bookingModel.StatusPending))
	if err != nil {
		log.Error().Err(err).Msg("failed to count pending bookings")

		return dto.HostStatsResponse{}, fmt.Errorf("failed to count pending bookings: %w", err)
	}

	return res, nil
}

func hostExperiencesFilter(profileID string, publishedOnly bool) gDto.FilterGroup {
	filters := []any{
		gDto.Filter{
			Field:    experienceModel.FieldHostID,
			Operator: gDto.FilterOperatorEq,
			Value:    profileID,
			Table:    experienceModel.TableName,
		},
	}

	if publishedOnly {
		filters = append(filters, gDto.Filter{
			Field:    experienceModel.FieldPublished,
			Operator: gDto.FilterOperatorEq,
			Value:    true,
			Table:    experienceModel.TableName,
		})
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  filters,
	}
}

func hostBookingsFilter(profileID, status string) gDto.FilterGroup {
	filters := []any{
		gDto.Filter{
			ArgName:  "stats_host_id",
			Field:    experienceModel.FieldHostID,
			Operator: gDto.FilterOperatorEq,
			Value:    profileID,
			Table:    experienceModel.TableName,
		},
	}

	if status != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    bookingModel.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    bookingModel.TableName,
		})
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  filters,
	}
}
