package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guide/infras/otel"
	"guide/internal/domains/stats/service"
	"guide/shared/constant"
	"guide/transport/http/middleware"
	"guide/transport/http/response"
)

type Handler struct {
	service service.Stats
	auth    middleware.Auth
	otel    otel.Otel
}

func New(service service.Stats, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		auth:    auth,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/stats", func(routerGroup chi.Router) {
		routerGroup.Use(handler.auth.Required)

		routerGroup.Get("/host", handler.GetHostStats)
	})
}

// GetHostStats returns the caller's dashboard numbers.
// @Summary Get host stats
// @Description Experience and booking counts for the calling host, computed live.
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Data[dto.HostStatsResponse] "Host stats"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/stats/host [get]
// @Security BearerAuth
func (handler *Handler) GetHostStats(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHostStats")
	defer scope.End()

	stats, err := handler.service.ForHost(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get host stats")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, stats)
}
