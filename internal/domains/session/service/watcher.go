package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"guide/config"
	"guide/infras/kafka"
	"guide/internal/domains/session/model/dto"
	"guide/shared/cache"
	"guide/shared/constant"
)

// Watcher relays session events from the session topic to local
// subscribers, so auth state changes made anywhere become visible here.
type Watcher interface {
	Subscribe(fn func(event dto.SessionEvent))
	Start(ctx context.Context)
}

type watcherImpl struct {
	mu          sync.RWMutex
	subscribers []func(event dto.SessionEvent)
	cfg         *config.Config
	cache       cache.Cache
	kafkaClient kafka.Client
}

func NewWatcher(cfg *config.Config, cache cache.Cache, kafkaClient kafka.Client, session Session) Watcher {
	watcher := &watcherImpl{
		cfg:         cfg,
		cache:       cache,
		kafkaClient: kafkaClient,
	}

	// A sign-in anywhere must leave a profile row behind, even when the
	// callback that would provision it ran on another instance.
	watcher.Subscribe(func(event dto.SessionEvent) {
		if event.Event != constant.SessionEventSignedIn {
			return
		}

		if err := session.EnsureProfile(context.Background(), event.AuthUID); err != nil {
			log.Error().Err(err).Str("authUID", event.AuthUID).Msg("failed to provision profile from session event")
		}
	})

	return watcher
}

func (w *watcherImpl) Subscribe(fn func(event dto.SessionEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.subscribers = append(w.subscribers, fn)
}

// Start blocks consuming the session topic until ctx is cancelled. Run it
// on its own goroutine.
func (w *watcherImpl) Start(ctx context.Context) {
	w.kafkaClient.Consume(ctx, constant.Empty, w.cfg.Kafka.Topic.Session, func(msg kafkaGo.Message) {
		decoded, err := kafka.DecodeKafkaMessage[dto.SessionEvent](msg)
		if err != nil {
			log.Error().Err(err).Msg("failed to decode session event")

			return
		}

		event, ok := decoded.Value.(dto.SessionEvent)
		if !ok {
			return
		}

		// A sign-out elsewhere invalidates whatever this instance cached
		// for that principal.
		if event.Event == constant.SessionEventSignedOut {
			if err := w.cache.Clear(context.WithoutCancel(ctx)); err != nil {
				log.Error().Err(err).Msg("failed to clear cache after remote sign-out")
			}
		}

		w.mu.RLock()
		subscribers := make([]func(event dto.SessionEvent), len(w.subscribers))
		copy(subscribers, w.subscribers)
		w.mu.RUnlock()

		for _, fn := range subscribers {
			fn(event)
		}
	})
}
