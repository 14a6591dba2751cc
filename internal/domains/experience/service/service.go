package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog/log"

	"guide/config"
	"guide/infras/otel"
	"guide/infras/s3"
	"guide/internal/domains/experience/model"
	"guide/internal/domains/experience/model/dto"
	"guide/internal/domains/experience/repository"
	notificationModel "guide/internal/domains/notification/model"
	notificationService "guide/internal/domains/notification/service"
	"guide/shared"
	"guide/shared/cache"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
)

const (
	cacheGetExperience    = "experience:get"
	cacheGetAllExperience = "experience:gets"
	cacheSearchExperience = "experience:search"

	imageDirectory = "experiences"
)

// Experience is the public catalog plus the host-side management of it.
// Public reads are cache-first; every write invalidates the listings it
// could have changed.
type Experience interface {
	List(ctx context.Context, params gDto.QueryParams) (dto.GetExperiencesResponse, error)
	SearchByCity(ctx context.Context, city string, params gDto.QueryParams) (dto.GetExperiencesResponse, error)
	Get(ctx context.Context, id string) (dto.ExperienceResponse, error)
	Prefetch(ctx context.Context, id string) (dto.ExperienceResponse, error)
	WarmCatalog(ctx context.Context)
	Invalidate(ctx context.Context)
	ListForHost(ctx context.Context, params gDto.QueryParams) (dto.GetExperiencesResponse, error)
	Create(ctx context.Context, req dto.CreateExperienceRequest) (dto.ExperienceResponse, error)
	Update(ctx context.Context, req dto.UpdateExperienceRequest, id string) error
	TogglePublish(ctx context.Context, id string) (published bool, err error)
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, id string, file multipart.File, fileHeader *multipart.FileHeader) (url string, err error)
}

type serviceImpl struct {
	repo      repository.Experience
	cfg       *config.Config
	cache     cache.Cache
	s3Service s3.S3
	notifier  notificationService.Notifier
	otel      otel.Otel
}

func New(repo repository.Experience, cfg *config.Config, cache cache.Cache, s3Service s3.S3, notifier notificationService.Notifier, otel otel.Otel) Experience {
	return &serviceImpl{
		repo:      repo,
		cfg:       cfg,
		cache:     cache,
		s3Service: s3Service,
		notifier:  notifier,
		otel:      otel,
	}
}

// List returns a page of the published catalog, newest first.
func (s *serviceImpl) List(ctx context.Context, params gDto.QueryParams) (res dto.GetExperiencesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer scope.TraceIfError(err)

	params = s.catalogParams(params)
	filter := publishedFilter()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllExperience, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for experiences")

		return res, nil
	}

	res, err = s.listPage(ctx, params, filter)
	if err != nil {
		return res, err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL.Catalog); err != nil {
			log.Error().Err(err).Msg("failed to save experiences to cache")
		}
	}()

	return res, nil
}

// SearchByCity filters published experiences by a city fragment. The cache
// key carries the lowercased term so equivalent searches share an entry.
func (s *serviceImpl) SearchByCity(ctx context.Context, city string, params gDto.QueryParams) (res dto.GetExperiencesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SearchByCity")
	defer scope.End()
	defer scope.TraceIfError(err)

	term := strings.ToLower(strings.TrimSpace(city))
	if term == constant.Empty {
		return s.List(ctx, params)
	}

	params = s.catalogParams(params)

	filter := publishedFilter()
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldCity,
		Operator: gDto.FilterOperatorLike,
		Value:    term,
		Table:    model.TableName,
	})

	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheSearchExperience, term), params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for experience search")

		return res, nil
	}

	res, err = s.listPage(ctx, params, filter)
	if err != nil {
		return res, err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL.Search); err != nil {
			log.Error().Err(err).Msg("failed to save experience search to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ExperienceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetExperience, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for experience")

		return res, nil
	}

	return s.Prefetch(ctx, id)
}

// Prefetch fetches one experience straight from storage and refreshes
// its cache entry, regardless of what the cache currently holds.
func (s *serviceImpl) Prefetch(ctx context.Context, id string) (res dto.ExperienceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Prefetch")
	defer scope.End()
	defer scope.TraceIfError(err)

	experience, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get experience")

		return res, fmt.Errorf("failed to get experience: %w", err)
	}

	if experience.ID == constant.Empty {
		return res, failure.NotFound("experience not found") //nolint:wrapcheck
	}

	res.FromModel(experience)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, shared.BuildCacheKey(cacheGetExperience, id), res, s.cfg.Cache.TTL.Experience); err != nil {
			log.Error().Err(err).Msg("failed to save experience to cache")
		}
	}()

	return res, nil
}

// WarmCatalog warms the first catalog page so the next read is served
// from cache. Errors are logged, never surfaced.
func (s *serviceImpl) WarmCatalog(ctx context.Context) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".WarmCatalog")
	defer scope.End()

	if _, err := s.List(ctx, gDto.QueryParams{}); err != nil {
		log.Error().Err(err).Msg("failed to warm experience catalog")
	}
}

// Invalidate drops every cached catalog listing and search page.
func (s *serviceImpl) Invalidate(ctx context.Context) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Invalidate")
	defer scope.End()

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllExperience)
	shared.InvalidateCaches(ctx, s.cache, cacheSearchExperience)
}

// ListForHost returns the calling host's own experiences, drafts included.
func (s *serviceImpl) ListForHost(ctx context.Context, params gDto.QueryParams) (res dto.GetExperiencesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListForHost")
	defer scope.End()
	defer scope.TraceIfError(err)

	hostID, err := s.requireHost(ctx)
	if err != nil {
		return res, err
	}

	params = s.catalogParams(params)

	return s.listPage(ctx, params, hostFilter(hostID))
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateExperienceRequest) (res dto.ExperienceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	hostID, err := s.requireHost(ctx)
	if err != nil {
		return res, err
	}

	experience := req.ToModel(hostID)
	if err = s.repo.Insert(ctx, experience); err != nil {
		log.Error().Err(err).Msg("failed to create experience")

		return res, fmt.Errorf("failed to create experience: %w", err)
	}

	s.invalidateListings(ctx)

	res.FromModel(experience)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateExperienceRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateExperienceRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") //nolint:wrapcheck
	}

	hostID, err := s.requireHost(ctx)
	if err != nil {
		return err
	}

	filter, err := s.ownedExperienceFilter(ctx, hostID, id)
	if err != nil {
		return err
	}

	updatedFields := shared.TransformFields(req)
	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update experience")

		return fmt.Errorf("failed to update experience: %w", err)
	}

	s.invalidateExperience(ctx, id)

	return nil
}

// TogglePublish flips an experience between draft and published and
// returns the new state.
func (s *serviceImpl) TogglePublish(ctx context.Context, id string) (published bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".TogglePublish")
	defer scope.End()
	defer scope.TraceIfError(err)

	hostID, err := s.requireHost(ctx)
	if err != nil {
		return false, err
	}

	filter, err := s.ownedExperienceFilter(ctx, hostID, id)
	if err != nil {
		return false, err
	}

	experience, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get experience")

		return false, fmt.Errorf("failed to get experience: %w", err)
	}

	published = !experience.Published

	updatedFields := map[string]any{model.FieldPublished: published}
	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to toggle experience publish state")

		return false, fmt.Errorf("failed to toggle experience publish state: %w", err)
	}

	s.invalidateExperience(ctx, id)

	kind := notificationModel.TypeExperienceUnpublished
	title := "Experience unpublished"
	body := fmt.Sprintf("%s is no longer visible in the catalog", experience.Title)

	if published {
		kind = notificationModel.TypeExperiencePublished
		title = "Experience published"
		body = fmt.Sprintf("%s is now live in the catalog", experience.Title)
	}

	s.notifier.Push(ctx, hostID, kind, title, body, map[string]any{"experience_id": id})

	return published, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	hostID, err := s.requireHost(ctx)
	if err != nil {
		return err
	}

	filter, err := s.ownedExperienceFilter(ctx, hostID, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete experience")

		return fmt.Errorf("failed to delete experience: %w", err)
	}

	s.invalidateExperience(ctx, id)

	return nil
}

// UploadImage stores the new cover image, points the experience at it, and
// removes the replaced object afterwards.
func (s *serviceImpl) UploadImage(ctx context.Context, id string, file multipart.File, fileHeader *multipart.FileHeader) (url string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	hostID, err := s.requireHost(ctx)
	if err != nil {
		return constant.Empty, err
	}

	filter, err := s.ownedExperienceFilter(ctx, hostID, id)
	if err != nil {
		return constant.Empty, err
	}

	experience, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get experience")

		return constant.Empty, fmt.Errorf("failed to get experience: %w", err)
	}

	bucket := s.cfg.External.S3.BucketName
	fileName := shared.BuildCacheKey(id, fileHeader.Filename)

	url, err = s.s3Service.UploadFile(ctx, bucket, imageDirectory, file, fileHeader, fileName)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload experience image")

		return constant.Empty, fmt.Errorf("failed to upload experience image: %w", err)
	}

	updatedFields := map[string]any{model.FieldImageURL: url}
	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to persist experience image url")

		return constant.Empty, fmt.Errorf("failed to persist experience image url: %w", err)
	}

	if experience.ImageURL != constant.Empty && experience.ImageURL != url {
		oldObject := s.s3Service.GetObjectNameFromURL(bucket, experience.ImageURL)
		if oldObject != constant.Empty {
			if err := s.s3Service.DeleteFile(ctx, bucket, constant.Empty, oldObject); err != nil {
				log.Warn().Err(err).Str("object", oldObject).Msg("failed to delete replaced experience image")
			}
		}
	}

	s.invalidateExperience(ctx, id)

	return url, nil
}

func (s *serviceImpl) listPage(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetExperiencesResponse, err error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count experiences")

		return res, fmt.Errorf("failed to count experiences: %w", err)
	}

	experiences, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get experiences")

		return res, fmt.Errorf("failed to get experiences: %w", err)
	}

	res.Experiences = dto.FromModels(experiences)
	res.TotalData = total
	res.TotalPage = shared.CalculateTotalPage(total, params.Limit)

	return res, nil
}

// catalogParams applies the catalog defaults: fixed page size, newest
// first.
func (s *serviceImpl) catalogParams(params gDto.QueryParams) gDto.QueryParams {
	if params.Page <= 0 {
		params.Page = constant.DefaultValuePage
	}

	if params.Limit <= 0 {
		params.Limit = s.cfg.Catalog.PageSize
	}

	if params.SortBy == constant.Empty {
		params.SortBy = fmt.Sprintf("%s.%s", model.TableName, constant.FieldCreatedAt)
	}

	if params.SortDir == constant.Empty {
		params.SortDir = gDto.SortDirDesc
	}

	return params
}

func (s *serviceImpl) requireHost(ctx context.Context) (string, error) {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	profileID, _ := ctx.Value(constant.ContextKeyProfileID).(string)

	if profileID == constant.Empty {
		return constant.Empty, failure.Unauthorized("no active session") //nolint:wrapcheck
	}

	if role != constant.RoleHost {
		return constant.Empty, failure.Forbidden("only hosts can manage experiences") //nolint:wrapcheck
	}

	return profileID, nil
}

// ownedExperienceFilter scopes a write to the caller's own row, verifying
// the row exists first so callers can distinguish 404 from 403.
func (s *serviceImpl) ownedExperienceFilter(ctx context.Context, hostID, id string) (gDto.FilterGroup, error) {
	exists, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if experience exists")

		return gDto.FilterGroup{}, fmt.Errorf("failed to check if experience exists: %w", err)
	}

	if !exists {
		return gDto.FilterGroup{}, failure.NotFound("experience not found") //nolint:wrapcheck
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldHostID,
		Operator: gDto.FilterOperatorEq,
		Value:    hostID,
		Table:    model.TableName,
	})
	filter.Operator = gDto.FilterGroupOperatorAnd

	owned, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check experience ownership")

		return gDto.FilterGroup{}, fmt.Errorf("failed to check experience ownership: %w", err)
	}

	if !owned {
		return gDto.FilterGroup{}, failure.ForbiddenError //nolint:wrapcheck
	}

	return filter, nil
}

func (s *serviceImpl) invalidateExperience(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetExperience, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete experience from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllExperience)
		shared.InvalidateCaches(c, s.cache, cacheSearchExperience)
	}()
}

func (s *serviceImpl) invalidateListings(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllExperience)
		shared.InvalidateCaches(c, s.cache, cacheSearchExperience)
	}()
}

func publishedFilter() gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldPublished,
				Operator: gDto.FilterOperatorEq,
				Value:    true,
				Table:    model.TableName,
			},
		},
	}
}

func hostFilter(hostID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldHostID,
				Operator: gDto.FilterOperatorEq,
				Value:    hostID,
				Table:    model.TableName,
			},
		},
	}
}
