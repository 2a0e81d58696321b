package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel канал Redis для событий комнат
const DefaultChannel = "studyroom:events"

// Redis рассылает сообщения через Redis pub/sub.
// Каждый экземпляр получает и собственные публикации, поэтому
// локальная доставка идет только через подписку.
type Redis struct {
	client  *redis.Client
	pubsub  *redis.PubSub
	logger  *slog.Logger
	channel string
	wg      sync.WaitGroup
}

// NewRedis подключается к Redis по URL вида redis://host:port/db
func NewRedis(ctx context.Context, logger *slog.Logger, redisURL, channel string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if channel == "" {
		channel = DefaultChannel
	}

	return &Redis{
		client:  client,
		logger:  logger.With("bus", "redis", "channel", channel),
		channel: channel,
	}, nil
}

// Subscribe подписывается на канал и запускает доставку в h
func (r *Redis) Subscribe(ctx context.Context, h Handler) error {
	pubsub := r.client.Subscribe(ctx, r.channel)

	// Ждем подтверждения подписки, иначе ранние публикации потеряются
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	r.pubsub = pubsub

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for m := range pubsub.Channel() {
			msg, err := decodeMessage(m.Payload)
			if err != nil {
				r.logger.Warn("Dropping malformed bus message", "error", err)
				continue
			}
			h(msg)
		}
	}()

	return nil
}

func (r *Redis) Publish(ctx context.Context, msg Message) error {
	payload, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r.pubsub != nil {
		_ = r.pubsub.Close()
	}
	r.wg.Wait()
	return r.client.Close()
}

func encodeMessage(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bus message: %w", err)
	}
	return data, nil
}

func decodeMessage(payload string) (Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return Message{}, fmt.Errorf("failed to decode bus message: %w", err)
	}
	if msg.RoomCode == "" || msg.Envelope.Event == "" {
		return Message{}, fmt.Errorf("bus message without room or event")
	}
	return msg, nil
}
