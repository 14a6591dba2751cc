package di

import (
	"guide/config"
	"guide/infras/redis"
	experienceService "guide/internal/domains/experience/service"
	sessionService "guide/internal/domains/session/service"
	"guide/shared/cache"
	"guide/transport/http"
)

// App bundles everything main needs to run: the HTTP server plus the
// background pieces that must start with it.
type App struct {
	HTTP       *http.HTTP
	Watcher    sessionService.Watcher
	Experience experienceService.Experience
}

// NewMirror only dials redis when the mirror is enabled; everything else
// runs on the in-process cache alone.
func NewMirror(cfg *config.Config) cache.Mirror {
	if !cfg.Cache.Redis.Enable {
		return cache.NewNoopMirror()
	}

	return cache.NewRedisMirror(redis.New(cfg))
}
