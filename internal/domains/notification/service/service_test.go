package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"guide/infras/otel/mocks"
	notificationMocks "guide/internal/domains/notification/mocks"
	"guide/internal/domains/notification/model"
	"guide/internal/domains/notification/service"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
)

type notificationMocksBundle struct {
	repo *notificationMocks.MockNotification
}

func newNotifier(t *testing.T) (service.Notifier, notificationMocksBundle) {
	t.Helper()

	ctrl := gomock.NewController(t)

	bundle := notificationMocksBundle{
		repo: notificationMocks.NewMockNotification(ctrl),
	}

	svc := service.New(bundle.repo, mocks.NewOtel())

	return svc, bundle
}

func profileContext(profileID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyProfileID, profileID)
}

func storedNotification(id string, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		ProfileID: "profile-1",
		Type:      model.TypeBookingRequest,
		Title:     "New booking request",
		Message:   "Sari Dewi requested Jogja Street Food Walk",
		Read:      read,
	}
}

func TestNotifierService_ListForProfile(t *testing.T) {
	t.Run("returns latest feed with unread count", func(t *testing.T) {
		svc, m := newNotifier(t)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Notification, error) {
				assert.Equal(t, 50, params.Limit)
				assert.Equal(t, gDto.SortDirDesc, params.SortDir)

				return []model.Notification{
					storedNotification("ntf-2", false),
					storedNotification("ntf-1", true),
				}, nil
			})

		m.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(1, nil)

		res, err := svc.ListForProfile(profileContext("profile-1"))

		assert.NoError(t, err)
		assert.Len(t, res.Notifications, 2)
		assert.Equal(t, "ntf-2", res.Notifications[0].ID)
		assert.Equal(t, 1, res.UnreadCount)
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		svc, _ := newNotifier(t)

		_, err := svc.ListForProfile(context.Background())

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("repository error propagates", func(t *testing.T) {
		svc, m := newNotifier(t)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, assert.AnError)

		_, err := svc.ListForProfile(profileContext("profile-1"))
		assert.Error(t, err)
	})
}

func TestNotifierService_MarkRead(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(m notificationMocksBundle)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "owner marks own notification",
			ctx:  profileContext("profile-1"),
			setupMock: func(m notificationMocksBundle) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, true, req[model.FieldRead])

						return nil
					})
			},
		},
		{
			name: "foreign notification reads as missing",
			ctx:  profileContext("profile-2"),
			setupMock: func(m notificationMocksBundle) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name:      "anonymous rejected",
			ctx:       context.Background(),
			setupMock: func(m notificationMocksBundle) {},
			wantErr:   true,
			wantCode:  http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newNotifier(t)
			tt.setupMock(m)

			err := svc.MarkRead(tt.ctx, "ntf-1")

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotifierService_MarkAllRead(t *testing.T) {
	t.Run("flips every unread row", func(t *testing.T) {
		svc, m := newNotifier(t)

		m.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req map[string]any, filter gDto.FilterGroup) error {
				assert.Equal(t, true, req[model.FieldRead])
				assert.Len(t, filter.Filters, 2)

				return nil
			})

		assert.NoError(t, svc.MarkAllRead(profileContext("profile-1")))
	})
}

func TestNotifierService_Delete(t *testing.T) {
	t.Run("owner deletes own notification", func(t *testing.T) {
		svc, m := newNotifier(t)

		m.repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		m.repo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil)

		assert.NoError(t, svc.Delete(profileContext("profile-1"), "ntf-1"))
	})

	t.Run("unknown notification not found", func(t *testing.T) {
		svc, m := newNotifier(t)

		m.repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		err := svc.Delete(profileContext("profile-1"), "missing")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestNotifierService_Push(t *testing.T) {
	t.Run("persists the notification in the background", func(t *testing.T) {
		svc, m := newNotifier(t)

		inserted := make(chan model.Notification, 1)

		m.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, notification model.Notification) error {
				inserted <- notification

				return nil
			})

		svc.Push(profileContext("profile-1"), "profile-1", model.TypeNewMessage, "New message", "You have a new message", map[string]any{"booking_id": "bkg-1"})

		select {
		case notification := <-inserted:
			assert.Equal(t, "profile-1", notification.ProfileID)
			assert.Equal(t, model.TypeNewMessage, notification.Type)
			assert.NotEmpty(t, notification.ID)

			var data map[string]any
			assert.NoError(t, json.Unmarshal(notification.Data, &data))
			assert.Equal(t, "bkg-1", data["booking_id"])
		case <-time.After(time.Second):
			t.Fatal("notification was never written")
		}
	})

	t.Run("empty recipient is dropped", func(t *testing.T) {
		svc, _ := newNotifier(t)

		svc.Push(context.Background(), "", model.TypeWelcome, "Welcome", "Welcome to Guide", nil)
	})
}
