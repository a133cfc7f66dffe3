package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "asset:topic:"

func channel(topic string) string { return channelPrefix + topic }

// RedisBroker 走 Redis Pub/Sub，多实例部署时每个实例都能收到
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker { return &RedisBroker{rdb: rdb} }

func (b *RedisBroker) Publish(ctx context.Context, topic string, ev Event) error {
	payload, err := encode(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Name, err)
	}
	return b.rdb.Publish(ctx, channel(topic), payload).Err()
}

type Subscription struct {
	ps *redis.PubSub
	ch chan Message
}

func (s *Subscription) C() <-chan Message { return s.ch }

func (s *Subscription) Close() error { return s.ps.Close() }

// Subscribe 等 Redis 确认订阅后才返回，之后发布的事件不会漏
func (b *RedisBroker) Subscribe(ctx context.Context, topics ...string) (*Subscription, error) {
	chans := make([]string, 0, len(topics))
	for _, t := range topics {
		chans = append(chans, channel(t))
	}
	ps := b.rdb.Subscribe(ctx, chans...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	sub := &Subscription{ps: ps, ch: make(chan Message, 16)}
	go func() {
		defer close(sub.ch)
		for m := range ps.Channel() {
			msg, err := decode(strings.TrimPrefix(m.Channel, channelPrefix), []byte(m.Payload))
			if err != nil {
				slog.Warn("drop undecodable event", "channel", m.Channel, "err", err)
				continue
			}
			select {
			case sub.ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub, nil
}
