package service_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"guide/infras/otel/mocks"
	bookingMocks "guide/internal/domains/booking/mocks"
	bookingModel "guide/internal/domains/booking/model"
	feedbackMocks "guide/internal/domains/feedback/mocks"
	"guide/internal/domains/feedback/model"
	"guide/internal/domains/feedback/model/dto"
	"guide/internal/domains/feedback/service"
	notificationMocks "guide/internal/domains/notification/mocks"
	"guide/shared/constant"
	"guide/shared/failure"
)

type feedbackMocksBundle struct {
	repo        *feedbackMocks.MockFeedback
	bookingRepo *bookingMocks.MockBooking
	notifier    *notificationMocks.MockNotifier
}

func newFeedbackService(t *testing.T) (service.Feedback, feedbackMocksBundle) {
	t.Helper()

	ctrl := gomock.NewController(t)

	bundle := feedbackMocksBundle{
		repo:        feedbackMocks.NewMockFeedback(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		notifier:    notificationMocks.NewMockNotifier(ctrl),
	}

	bundle.notifier.EXPECT().
		Push(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		AnyTimes()

	svc := service.New(bundle.repo, bundle.bookingRepo, bundle.notifier, mocks.NewOtel())

	return svc, bundle
}

func guestContext(profileID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyProfileID, profileID)
}

func confirmedBooking() bookingModel.Booking {
	return bookingModel.Booking{
		ID:           "bkg-1",
		ExperienceID: "exp-1",
		GuestID:      "guest-1",
		HostID:       "host-1",
		Status:       bookingModel.StatusConfirmed,
	}
}

func TestFeedbackService_Create(t *testing.T) {
	req := dto.CreateFeedbackRequest{BookingID: "bkg-1", Rating: 5, Comment: "Wonderful host"}

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(m feedbackMocksBundle)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "guest rates confirmed booking",
			ctx:  guestContext("guest-1"),
			setupMock: func(m feedbackMocksBundle) {
				m.bookingRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(confirmedBooking(), nil)

				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, feedback model.Feedback) error {
						assert.Equal(t, "exp-1", feedback.ExperienceID)
						assert.Equal(t, "guest-1", feedback.GuestID)
						assert.Equal(t, "host-1", feedback.HostID)
						assert.Equal(t, 5, feedback.Rating)

						return nil
					})
			},
		},
		{
			name: "repeat submission conflicts",
			ctx:  guestContext("guest-1"),
			setupMock: func(m feedbackMocksBundle) {
				m.bookingRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(confirmedBooking(), nil)

				uniqueViolation := fmt.Errorf("failed to insert data (feedback): %w", &pq.Error{Code: "23505"})

				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(uniqueViolation)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "pending booking rejected",
			ctx:  guestContext("guest-1"),
			setupMock: func(m feedbackMocksBundle) {
				pending := confirmedBooking()
				pending.Status = bookingModel.StatusPending

				m.bookingRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pending, nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "host cannot rate own booking",
			ctx:  guestContext("host-1"),
			setupMock: func(m feedbackMocksBundle) {
				m.bookingRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(confirmedBooking(), nil)
			},
			wantErr:  true,
			wantCode: http.StatusForbidden,
		},
		{
			name: "unknown booking not found",
			ctx:  guestContext("guest-1"),
			setupMock: func(m feedbackMocksBundle) {
				m.bookingRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookingModel.Booking{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name:      "anonymous rejected",
			ctx:       context.Background(),
			setupMock: func(m feedbackMocksBundle) {},
			wantErr:   true,
			wantCode:  http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newFeedbackService(t)
			tt.setupMock(m)

			res, err := svc.Create(tt.ctx, req)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 5, res.Rating)
				assert.NotEmpty(t, res.ID)
			}
		})
	}
}

func TestFeedbackService_ListForExperience(t *testing.T) {
	t.Run("returns feedback with guest names", func(t *testing.T) {
		svc, m := newFeedbackService(t)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Feedback{
				{ID: "fbk-1", ExperienceID: "exp-1", Rating: 4, GuestName: "Sari Dewi"},
			}, nil)

		res, err := svc.ListForExperience(context.Background(), "exp-1")

		assert.NoError(t, err)
		assert.Len(t, res, 1)
		assert.Equal(t, "Sari Dewi", res[0].GuestName)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		svc, m := newFeedbackService(t)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, assert.AnError)

		_, err := svc.ListForExperience(context.Background(), "exp-1")
		assert.Error(t, err)
	})
}
