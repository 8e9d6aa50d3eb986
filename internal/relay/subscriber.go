package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"ytrelay/internal/job"
	"ytrelay/internal/metrics"
)

// Broadcaster is the hub surface the subscriber needs.
type Broadcaster interface {
	Broadcast(id job.ID, payload []byte)
}

// Subscriber holds the process-wide subscription to the progress channel and
// pushes each decodable message into the hub. One subscriber runs per process,
// started at boot and stopped at shutdown.
type Subscriber struct {
	client  *redis.Client
	channel string
	hub     Broadcaster
	logger  *slog.Logger

	pubsub *redis.PubSub
	done   chan struct{}
}

// NewSubscriber constructs a subscriber bound to the shared Redis connection.
func NewSubscriber(client *redis.Client, channel string, hub Broadcaster, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		client:  client,
		channel: channel,
		hub:     hub,
		logger:  logger.With(slog.String("channel", channel)),
		done:    make(chan struct{}),
	}
}

// Start establishes the subscription and launches the receive loop. It fails
// only if the subscription itself cannot be confirmed.
func (s *Subscriber) Start(ctx context.Context) error {
	s.pubsub = s.client.Subscribe(ctx, s.channel)
	if _, err := s.pubsub.Receive(ctx); err != nil {
		_ = s.pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", s.channel, err)
	}
	s.logger.Info("subscribed to bus channel")

	go s.run()
	return nil
}

// Stop closes the subscription and waits for the receive loop to drain.
func (s *Subscriber) Stop() error {
	if s.pubsub == nil {
		return nil
	}
	err := s.pubsub.Close()
	<-s.done
	return err
}

func (s *Subscriber) run() {
	defer close(s.done)
	for msg := range s.pubsub.Channel() {
		s.dispatch(msg.Payload)
	}
}

// dispatch decodes just enough of a bus message to route it, then forwards
// the original payload bytes. Undecodable messages are logged and dropped;
// the loop never stops over one.
func (s *Subscriber) dispatch(payload string) {
	id, err := job.DecodeProgress([]byte(payload))
	if err != nil {
		metrics.BusDecodeFailures.Inc()
		s.logger.Warn("dropping undecodable bus message", slog.Any("error", err))
		return
	}
	s.hub.Broadcast(id, []byte(payload))
}
