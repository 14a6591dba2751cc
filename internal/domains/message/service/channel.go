package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"guide/infras/kafka"
	"guide/internal/domains/message/model/dto"
	"guide/shared/constant"
	"guide/shared/failure"
)

const channelUpdateBuffer = 16

// Channel is a live, ordered view over one booking's conversation. The
// feed goroutine and direct Send calls race to append the same row, so
// every append goes through an id dedup set under the lock.
type Channel struct {
	bookingID string
	viewerID  string
	svc       *serviceImpl

	mu        sync.Mutex
	applied   map[string]struct{}
	delivered map[string]struct{}
	messages  []dto.MessageResponse
	updates   chan dto.MessageResponse
	cancel    context.CancelFunc
}

func newChannel(bookingID, viewerID string, svc *serviceImpl) *Channel {
	return &Channel{
		bookingID: bookingID,
		viewerID:  viewerID,
		svc:       svc,
		applied:   map[string]struct{}{},
		delivered: map[string]struct{}{},
		updates:   make(chan dto.MessageResponse, channelUpdateBuffer),
	}
}

func (c *Channel) BookingID() string {
	return c.bookingID
}

// LoadHistory replaces the channel's view with the stored conversation.
// On error the previous view stays intact.
func (c *Channel) LoadHistory(ctx context.Context) error {
	messages, err := c.svc.LoadHistory(ctx, c.bookingID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = messages
	c.applied = make(map[string]struct{}, len(messages))

	for _, message := range messages {
		c.applied[message.ID] = struct{}{}
	}

	return nil
}

// Send persists the body and applies it locally without waiting for the
// event to come back around through the feed. Only the viewer the channel
// was opened for may write through it.
func (c *Channel) Send(ctx context.Context, body string) (dto.MessageResponse, error) {
	profileID, _ := ctx.Value(constant.ContextKeyProfileID).(string)
	if profileID != c.viewerID {
		return dto.MessageResponse{}, failure.ForbiddenError //nolint:wrapcheck
	}

	res, err := c.svc.Send(ctx, c.bookingID, dto.SendMessageRequest{Body: body})
	if err != nil {
		return res, err
	}

	c.OnInsert(res)

	return res, nil
}

// Start consumes the message topic until ctx is cancelled or Stop is
// called. Each channel reads with its own consumer group so every
// instance sees every event.
func (c *Channel) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	group := "guide.channel." + uuid.NewString()

	go c.svc.kafkaClient.Consume(ctx, group, c.svc.cfg.Kafka.Topic.MessageInserted, func(msg kafkaGo.Message) {
		decoded, err := kafka.DecodeKafkaMessage[dto.MessageEvent](msg)
		if err != nil {
			log.Error().Err(err).Msg("failed to decode message event")

			return
		}

		event, ok := decoded.Value.(dto.MessageEvent)
		if !ok {
			return
		}

		c.OnInsert(event.ToResponse())
	})
}

func (c *Channel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// OnInsert applies one inserted row to the view. Events for other
// bookings are ignored, already-applied ids are dropped, and the view
// stays sorted by created_at whatever order events arrive in.
func (c *Channel) OnInsert(message dto.MessageResponse) bool {
	if message.BookingID != c.bookingID {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, seen := c.applied[message.ID]; seen {
		return false
	}

	c.applied[message.ID] = struct{}{}

	idx := len(c.messages)
	for idx > 0 && c.messages[idx-1].CreatedAt.After(message.CreatedAt) {
		idx--
	}

	c.messages = append(c.messages, dto.MessageResponse{})
	copy(c.messages[idx+1:], c.messages[idx:])
	c.messages[idx] = message

	select {
	case c.updates <- message:
	default:
		// A stalled consumer drops live notifications; Messages still
		// holds the full view.
	}

	return true
}

// Messages returns a copy of the current view.
func (c *Channel) Messages() []dto.MessageResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]dto.MessageResponse, len(c.messages))
	copy(snapshot, c.messages)

	return snapshot
}

// DeliverSnapshot returns the current view and marks every row in it as
// written to the consumer. An event applied between Start and the
// snapshot sits in both the view and the updates queue; marking here
// lets ShouldDeliver drop the queued duplicate.
func (c *Channel) DeliverSnapshot() []dto.MessageResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]dto.MessageResponse, len(c.messages))
	copy(snapshot, c.messages)

	for _, message := range snapshot {
		c.delivered[message.ID] = struct{}{}
	}

	return snapshot
}

// ShouldDeliver reports whether the id has reached the consumer yet,
// marking it delivered when it has not.
func (c *Channel) ShouldDeliver(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, seen := c.delivered[id]; seen {
		return false
	}

	c.delivered[id] = struct{}{}

	return true
}

// Updates delivers messages applied after the caller started listening.
func (c *Channel) Updates() <-chan dto.MessageResponse {
	return c.updates
}
