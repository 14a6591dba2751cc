package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"guide/config"
	"guide/infras/otel/mocks"
	s3Mocks "guide/infras/s3/mocks"
	experienceMocks "guide/internal/domains/experience/mocks"
	"guide/internal/domains/experience/model"
	"guide/internal/domains/experience/model/dto"
	"guide/internal/domains/experience/service"
	notificationMocks "guide/internal/domains/notification/mocks"
	cacheMocks "guide/shared/cache/mocks"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
	gModel "guide/shared/model"
	"guide/shared/timezone"
)

type experienceMocksBundle struct {
	repo      *experienceMocks.MockExperience
	cache     *cacheMocks.MockCache
	s3Service *s3Mocks.MockS3
	notifier  *notificationMocks.MockNotifier
}

func newExperienceService(t *testing.T) (service.Experience, experienceMocksBundle) {
	t.Helper()

	ctrl := gomock.NewController(t)

	bundle := experienceMocksBundle{
		repo:      experienceMocks.NewMockExperience(ctrl),
		cache:     cacheMocks.NewMockCache(ctrl),
		s3Service: s3Mocks.NewMockS3(ctrl),
		notifier:  notificationMocks.NewMockNotifier(ctrl),
	}

	bundle.notifier.EXPECT().
		Push(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		AnyTimes()

	cfg := &config.Config{}
	cfg.Catalog.PageSize = 12
	cfg.Cache.TTL.Catalog = 120
	cfg.Cache.TTL.Search = 60
	cfg.Cache.TTL.Experience = 300

	svc := service.New(bundle.repo, cfg, bundle.cache, bundle.s3Service, bundle.notifier, mocks.NewOtel())

	// Write-behind cache saves and invalidations run off the request
	// goroutine.
	bundle.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	bundle.cache.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	bundle.cache.EXPECT().
		DeletePrefix(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	return svc, bundle
}

func hostContext(profileID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyProfileID, profileID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleHost)
}

func guestContext(profileID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyProfileID, profileID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleGuest)
}

func publishedExperience(id, city string) model.Experience {
	now := timezone.Now()

	return model.Experience{
		ID:            id,
		HostID:        "host-1",
		Title:         "Street Food Walk",
		Description:   "An evening of local eats",
		City:          city,
		Price:         "Rp 250.000",
		ContactMethod: constant.ContactMethodWhatsapp,
		Published:     true,
		HostName:      "Budi",
		HostVerified:  true,
		Metadata:      gModel.Metadata{CreatedAt: now, UpdatedAt: now},
	}
}

func TestExperienceService_List(t *testing.T) {
	t.Run("cache hit serves without touching the repository", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		_, err := svc.List(context.Background(), gDto.QueryParams{})
		assert.NoError(t, err)
	})

	t.Run("cache miss loads a page and reports totals", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		m.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(25, nil)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Experience, error) {
				// Catalog defaults apply when the caller passes nothing.
				assert.Equal(t, 1, params.Page)
				assert.Equal(t, 12, params.Limit)
				assert.Equal(t, gDto.SortDirDesc, params.SortDir)

				return []model.Experience{publishedExperience("exp-1", "Yogyakarta")}, nil
			})

		res, err := svc.List(context.Background(), gDto.QueryParams{})

		assert.NoError(t, err)
		assert.Len(t, res.Experiences, 1)
		assert.Equal(t, 25, res.TotalData)
		assert.Equal(t, 3, res.TotalPage)
	})

	t.Run("count error propagates", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		m.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(0, errors.New("database error"))

		_, err := svc.List(context.Background(), gDto.QueryParams{})
		assert.Error(t, err)
	})
}

func TestExperienceService_SearchByCity(t *testing.T) {
	t.Run("blank term falls back to the full catalog", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		_, err := svc.SearchByCity(context.Background(), "   ", gDto.QueryParams{})
		assert.NoError(t, err)
	})

	t.Run("equivalent terms share a cache entry", func(t *testing.T) {
		svc, m := newExperienceService(t)

		var firstKey, secondKey string

		m.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, key string, _ any) error {
				firstKey = key

				return errors.New("cache miss")
			})

		m.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(1, nil)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Experience{publishedExperience("exp-1", "Yogyakarta")}, nil)

		_, err := svc.SearchByCity(context.Background(), "  Yogyakarta ", gDto.QueryParams{})
		assert.NoError(t, err)

		m.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, key string, _ any) error {
				secondKey = key

				return nil
			})

		_, err = svc.SearchByCity(context.Background(), "YOGYAKARTA", gDto.QueryParams{})
		assert.NoError(t, err)

		assert.Equal(t, firstKey, secondKey)
		assert.Contains(t, firstKey, "yogyakarta")
	})

	t.Run("search results map from models", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		m.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(1, nil)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Experience{publishedExperience("exp-2", "Bandung")}, nil)

		res, err := svc.SearchByCity(context.Background(), "bandung", gDto.QueryParams{})

		assert.NoError(t, err)
		assert.Len(t, res.Experiences, 1)
		assert.Equal(t, "Bandung", res.Experiences[0].City)
	})
}

func TestExperienceService_Get(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		setupMock func(m experienceMocksBundle)
		wantErr   bool
	}{
		{
			name: "cache miss loads from the repository",
			id:   "exp-1",
			setupMock: func(m experienceMocksBundle) {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(publishedExperience("exp-1", "Yogyakarta"), nil)
			},
		},
		{
			name: "unknown id not found",
			id:   "exp-gone",
			setupMock: func(m experienceMocksBundle) {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Experience{}, nil)
			},
			wantErr: true,
		},
		{
			name: "repository error propagates",
			id:   "exp-1",
			setupMock: func(m experienceMocksBundle) {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Experience{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newExperienceService(t)
			tt.setupMock(m)

			res, err := svc.Get(context.Background(), tt.id)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.id, res.ID)
			}
		})
	}
}

func TestExperienceService_Create(t *testing.T) {
	req := dto.CreateExperienceRequest{
		Title:         "Street Food Walk",
		Description:   "An evening of local eats",
		City:          "Yogyakarta",
		Price:         "Rp 250.000",
		ContactMethod: constant.ContactMethodWhatsapp,
		Published:     true,
	}

	t.Run("host creates an experience", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, experience model.Experience) error {
				assert.Equal(t, "host-1", experience.HostID)
				assert.NotEmpty(t, experience.ID)

				return nil
			})

		res, err := svc.Create(hostContext("host-1"), req)

		assert.NoError(t, err)
		assert.Equal(t, "Street Food Walk", res.Title)
	})

	t.Run("guest cannot create", func(t *testing.T) {
		svc, _ := newExperienceService(t)

		_, err := svc.Create(guestContext("guest-1"), req)
		assert.Error(t, err)
	})

	t.Run("anonymous cannot create", func(t *testing.T) {
		svc, _ := newExperienceService(t)

		_, err := svc.Create(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestExperienceService_Update(t *testing.T) {
	published := true

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.UpdateExperienceRequest
		setupMock func(m experienceMocksBundle)
		wantErr   bool
	}{
		{
			name: "owner updates",
			ctx:  hostContext("host-1"),
			req:  dto.UpdateExperienceRequest{Published: &published},
			setupMock: func(m experienceMocksBundle) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name:      "empty update rejected",
			ctx:       hostContext("host-1"),
			req:       dto.UpdateExperienceRequest{},
			setupMock: func(m experienceMocksBundle) {},
			wantErr:   true,
		},
		{
			name: "missing experience not found",
			ctx:  hostContext("host-1"),
			req:  dto.UpdateExperienceRequest{Title: "New title"},
			setupMock: func(m experienceMocksBundle) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
		{
			name: "foreign experience forbidden",
			ctx:  hostContext("host-2"),
			req:  dto.UpdateExperienceRequest{Title: "New title"},
			setupMock: func(m experienceMocksBundle) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newExperienceService(t)
			tt.setupMock(m)

			err := svc.Update(tt.ctx, tt.req, "exp-1")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExperienceService_TogglePublish(t *testing.T) {
	t.Run("owner unpublishes a published experience", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil).
			Times(2)

		m.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(publishedExperience("exp-1", "Yogyakarta"), nil)

		m.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, false, fields[model.FieldPublished])

				return nil
			})

		published, err := svc.TogglePublish(hostContext("host-1"), "exp-1")

		assert.NoError(t, err)
		assert.False(t, published)
	})

	t.Run("guest forbidden", func(t *testing.T) {
		svc, _ := newExperienceService(t)

		_, err := svc.TogglePublish(guestContext("guest-1"), "exp-1")
		assert.Error(t, err)
	})
}

func TestExperienceService_Delete(t *testing.T) {
	t.Run("owner deletes", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil).
			Times(2)

		m.repo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil)

		assert.NoError(t, svc.Delete(hostContext("host-1"), "exp-1"))
	})

	t.Run("guest forbidden", func(t *testing.T) {
		svc, _ := newExperienceService(t)

		assert.Error(t, svc.Delete(guestContext("guest-1"), "exp-1"))
	})
}

func TestExperienceService_WarmCatalog(t *testing.T) {
	svc, m := newExperienceService(t)

	m.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss"))

	m.repo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(0, nil)

	m.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Experience{}, nil)

	svc.WarmCatalog(context.Background())
}

func TestExperienceService_Prefetch(t *testing.T) {
	t.Run("loads straight from storage and skips the cache read", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(publishedExperience("exp-1", "Yogyakarta"), nil)

		res, err := svc.Prefetch(context.Background(), "exp-1")

		assert.NoError(t, err)
		assert.Equal(t, "exp-1", res.ID)
	})

	t.Run("unknown id not found", func(t *testing.T) {
		svc, m := newExperienceService(t)

		m.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Experience{}, nil)

		_, err := svc.Prefetch(context.Background(), "exp-gone")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestExperienceService_CacheKeyShape(t *testing.T) {
	svc, m := newExperienceService(t)

	var capturedKey string

	m.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, _ any) error {
			capturedKey = key

			return nil
		})

	_, err := svc.SearchByCity(context.Background(), "Jakarta Selatan", gDto.QueryParams{})

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(capturedKey, "experience:search:jakarta selatan"))
}
