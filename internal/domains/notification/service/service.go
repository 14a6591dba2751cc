package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"guide/infras/otel"
	"guide/internal/domains/notification/model"
	"guide/internal/domains/notification/model/dto"
	"guide/internal/domains/notification/repository"
	"guide/shared"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
	gModel "guide/shared/model"
	"guide/shared/timezone"
)

// feedLimit caps the feed at the most recent entries; older rows stay in
// the table but never reach the client.
const feedLimit = 50

// Notifier maintains each profile's notification feed. Push is
// fire-and-forget so domain flows never fail because a notification row
// could not be written.
type Notifier interface {
	ListForProfile(ctx context.Context) (dto.GetNotificationsResponse, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Push(ctx context.Context, profileID, kind, title, body string, data map[string]any)
}

type serviceImpl struct {
	repo repository.Notification
	otel otel.Otel
}

func New(repo repository.Notification, otel otel.Otel) Notifier {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

// ListForProfile returns the caller's latest notifications plus how many
// of them are still unread.
func (s *serviceImpl) ListForProfile(ctx context.Context) (res dto.GetNotificationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListForProfile")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, err := principal(ctx)
	if err != nil {
		return res, err
	}

	params := gDto.QueryParams{
		Page:    1,
		Limit:   feedLimit,
		SortBy:  fmt.Sprintf("%s.%s", model.TableName, model.FieldCreatedAt),
		SortDir: gDto.SortDirDesc,
	}

	notifications, err := s.repo.GetAll(ctx, params, profileFilter(profileID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get notifications")

		return res, fmt.Errorf("failed to get notifications: %w", err)
	}

	unread, err := s.repo.Count(ctx, unreadFilter(profileID))
	if err != nil {
		log.Error().Err(err).Msg("failed to count unread notifications")

		return res, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	res.Notifications = dto.FromModels(notifications)
	res.UnreadCount = unread

	return res, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkRead")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, err := principal(ctx)
	if err != nil {
		return err
	}

	if err = s.requireOwned(ctx, id, profileID); err != nil {
		return err
	}

	update := map[string]any{
		model.FieldRead:         true,
		constant.FieldUpdatedAt: timezone.Now(),
	}

	if err = s.repo.Update(ctx, update, ownedFilter(id, profileID)); err != nil {
		log.Error().Err(err).Msg("failed to mark notification read")

		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

// MarkAllRead clears the caller's unread counter in one statement.
func (s *serviceImpl) MarkAllRead(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkAllRead")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, err := principal(ctx)
	if err != nil {
		return err
	}

	update := map[string]any{
		model.FieldRead:         true,
		constant.FieldUpdatedAt: timezone.Now(),
	}

	if err = s.repo.Update(ctx, update, unreadFilter(profileID)); err != nil {
		log.Error().Err(err).Msg("failed to mark notifications read")

		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	profileID, err := principal(ctx)
	if err != nil {
		return err
	}

	if err = s.requireOwned(ctx, id, profileID); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, ownedFilter(id, profileID)); err != nil {
		log.Error().Err(err).Msg("failed to delete notification")

		return fmt.Errorf("failed to delete notification: %w", err)
	}

	return nil
}

// Push writes the notification in the background, detached from the
// caller's deadline. Failures are logged and dropped.
func (s *serviceImpl) Push(ctx context.Context, profileID, kind, title, body string, data map[string]any) {
	if profileID == constant.Empty {
		return
	}

	now := timezone.Now()

	notification := model.Notification{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Type:      kind,
		Title:     title,
		Message:   body,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			log.Error().Err(err).Str("type", kind).Msg("failed to marshal notification data")
		} else {
			notification.Data = payload
		}
	}

	go func() {
		detached := context.WithoutCancel(ctx)

		if err := s.repo.Insert(detached, notification); err != nil {
			log.Error().Err(err).Str("type", kind).Str("profile_id", profileID).Msg("failed to insert notification")
		}
	}()
}

func (s *serviceImpl) requireOwned(ctx context.Context, id, profileID string) error {
	exists, err := s.repo.Exist(ctx, ownedFilter(id, profileID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check notification")

		return fmt.Errorf("failed to check notification: %w", err)
	}

	if !exists {
		return failure.NotFound("notification not found") //nolint:wrapcheck
	}

	return nil
}

func principal(ctx context.Context) (string, error) {
	profileID, _ := ctx.Value(constant.ContextKeyProfileID).(string)
	if profileID == constant.Empty {
		return constant.Empty, failure.Unauthorized("no active session") //nolint:wrapcheck
	}

	return profileID, nil
}

func profileFilter(profileID string) gDto.FilterGroup {
	return shared.FilterByID(profileID, model.FieldProfileID, model.TableName)
}

func unreadFilter(profileID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldProfileID,
				Operator: gDto.FilterOperatorEq,
				Value:    profileID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldRead,
				Operator: gDto.FilterOperatorEq,
				Value:    false,
				Table:    model.TableName,
			},
		},
	}
}

func ownedFilter(id, profileID string) gDto.FilterGroup {
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
				Field:    model.FieldProfileID,
				Operator: gDto.FilterOperatorEq,
				Value:    profileID,
				Table:    model.TableName,
			},
		},
	}
}
