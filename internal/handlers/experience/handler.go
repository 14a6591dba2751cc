package experience

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guide/infras/otel"
	"guide/internal/domains/experience/model/dto"
	"guide/internal/domains/experience/service"
	feedbackService "guide/internal/domains/feedback/service"
	"guide/shared/constant"
	gDto "guide/shared/dto"
	"guide/shared/failure"
	"guide/shared/validator"
	"guide/transport/http/middleware"
	"guide/transport/http/response"
)

const maxImageUploadBytes = 10 << 20

type Handler struct {
	service         service.Experience
	feedbackService feedbackService.Feedback
	auth            middleware.Auth
	otel            otel.Otel
}

func New(service service.Experience, feedbackService feedbackService.Feedback, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service:         service,
		feedbackService: feedbackService,
		auth:            auth,
		otel:            otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/experiences", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetExperiences)
		routerGroup.Get("/search", handler.SearchExperiences)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.auth.Required)
			protected.Get("/mine", handler.GetMyExperiences)
			protected.Post("/", handler.CreateExperience)
			protected.Patch("/{id}", handler.UpdateExperience)
			protected.Post("/{id}/publish", handler.TogglePublish)
			protected.Delete("/{id}", handler.DeleteExperience)
			protected.Post("/{id}/image", handler.UploadImage)
		})

		routerGroup.Get("/{id}", handler.GetExperienceByID)
		routerGroup.Get("/{id}/feedback", handler.GetExperienceFeedback)
	})
}

// GetExperiences lists the published catalog.
// @Summary List published experiences
// @Description Retrieve the published catalog, newest first, with pagination.
// @Tags Experience
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetExperiencesResponse] "Catalog page"
// @Failure 500 {object} response.Error
// @Router /v1/experiences [get]
func (handler *Handler) GetExperiences(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetExperiences")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, false)

	experiences, err := handler.service.List(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get experiences")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, experiences)
}

// SearchExperiences filters the catalog by city.
// @Summary Search experiences by city
// @Description Case-insensitive city search over the published catalog; an empty term returns the full catalog.
// @Tags Experience
// @Produce json
// @Param city query string false "City search term"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetExperiencesResponse] "Matching experiences"
// @Failure 500 {object} response.Error
// @Router /v1/experiences/search [get]
func (handler *Handler) SearchExperiences(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchExperiences")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, false)

	city := request.URL.Query().Get(constant.RequestParamCity)

	experiences, err := handler.service.SearchByCity(ctx, city, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search experiences")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, experiences)
}

// GetExperienceByID returns one experience.
// @Summary Get an experience by ID
// @Tags Experience
// @Produce json
// @Param id path string true "Experience ID"
// @Success 200 {object} response.Data[dto.ExperienceResponse] "Experience details"
// @Failure 404 {object} response.Error
// @Router /v1/experiences/{id} [get]
func (handler *Handler) GetExperienceByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetExperienceByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	experience, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get experience")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, experience)
}

// GetExperienceFeedback lists feedback left for an experience.
// @Summary List feedback for an experience
// @Tags Experience
// @Produce json
// @Param id path string true "Experience ID"
// @Success 200 {object} response.Data[[]feedbackDto.FeedbackResponse] "Feedback entries"
// @Failure 500 {object} response.Error
// @Router /v1/experiences/{id}/feedback [get]
func (handler *Handler) GetExperienceFeedback(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetExperienceFeedback")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	feedback, err := handler.feedbackService.ListForExperience(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get experience feedback")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, feedback)
}

// GetMyExperiences lists the caller's own experiences including drafts.
// @Summary List own experiences
// @Tags Experience
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetExperiencesResponse] "Host's experiences"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/experiences/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyExperiences(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyExperiences")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	experiences, err := handler.service.ListForHost(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get host experiences")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, experiences)
}

// CreateExperience adds a new experience for the calling host.
// @Summary Create an experience
// @Tags Experience
// @Accept json
// @Produce json
// @Param request body dto.CreateExperienceRequest true "Create Experience Request"
// @Success 201 {object} response.Data[dto.ExperienceResponse] "Created experience"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/experiences [post]
// @Security BearerAuth
func (handler *Handler) CreateExperience(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateExperience")
	defer scope.End()

	req := dto.CreateExperienceRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	experience, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create experience")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, experience)
}

// UpdateExperience patches an experience, including publish toggling.
// @Summary Update an experience
// @Tags Experience
// @Accept json
// @Produce json
// @Param id path string true "Experience ID"
// @Param request body dto.UpdateExperienceRequest true "Update Experience Request"
// @Success 200 {object} response.Message "Experience updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/experiences/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateExperience(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateExperience")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.UpdateExperienceRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update experience")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Experience updated successfully")
}

// TogglePublish flips an experience between draft and published.
// @Summary Toggle experience publish state
// @Tags Experience
// @Produce json
// @Param id path string true "Experience ID"
// @Success 200 {object} response.Data[dto.PublishStateResponse] "New publish state"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/experiences/{id}/publish [post]
// @Security BearerAuth
func (handler *Handler) TogglePublish(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".TogglePublish")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	published, err := handler.service.TogglePublish(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to toggle experience publish state")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, dto.PublishStateResponse{Published: published})
}

// DeleteExperience removes an experience owned by the caller.
// @Summary Delete an experience
// @Tags Experience
// @Produce json
// @Param id path string true "Experience ID"
// @Success 200 {object} response.Message "Experience deleted successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/experiences/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteExperience(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteExperience")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete experience")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Experience deleted successfully")
}

// UploadImage replaces the experience cover image.
// @Summary Upload an experience image
// @Tags Experience
// @Accept mpfd
// @Produce json
// @Param id path string true "Experience ID"
// @Param image formData file true "Cover image"
// @Success 200 {object} response.Data[dto.UploadImageResponse] "Public image URL"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/experiences/{id}/image [post]
// @Security BearerAuth
func (handler *Handler) UploadImage(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadImage")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := request.ParseMultipartForm(maxImageUploadBytes); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(writer, failure.BadRequestFromString("invalid multipart form"))

		return
	}

	file, fileHeader, err := request.FormFile("image")
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read image file")

		response.WithError(writer, failure.BadRequestFromString("image file is required"))

		return
	}
	defer file.Close()

	url, err := handler.service.UploadImage(ctx, id, file, fileHeader)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload image")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, dto.UploadImageResponse{ImageURL: url})
}
