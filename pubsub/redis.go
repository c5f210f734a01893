package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ramory-l/roomcast"
)

var ErrClosed = errors.New("pubsub: closed")

// DefaultChannelPrefix is prepended to topic names to build redis channels.
const DefaultChannelPrefix = "roomcast:"

// RedisOptions configures the client built by NewRedisClient.
type RedisOptions struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	PingTimeout  time.Duration
}

// NewRedisClient connects to redis and checks the connection with a ping.
func NewRedisClient(ctx context.Context, cfg RedisOptions) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 2 * time.Second
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Redis is a bus on redis PUBLISH/SUBSCRIBE. Messages travel as JSON.
// Redis does not retry or persist: a node that is not subscribed when a
// message is published never sees it.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[*redis.PubSub]struct{}
	closed bool
}

var _ roomcast.PubSub = (*Redis)(nil)

type RedisOption func(*Redis)

func WithChannelPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

func WithLogger(logger *slog.Logger) RedisOption {
	return func(r *Redis) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRedis wraps an existing client. The client stays owned by the caller.
func NewRedis(rdb redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		rdb:    rdb,
		prefix: DefaultChannelPrefix,
		logger: slog.New(slog.DiscardHandler),
		subs:   make(map[*redis.PubSub]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) channel(topic roomcast.Topic) string {
	return r.prefix + string(topic)
}

func (r *Redis) Publish(ctx context.Context, topic roomcast.Topic, msg *roomcast.DispatchMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal dispatch message: %w", err)
	}

	if err := r.rdb.Publish(ctx, r.channel(topic), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe waits for redis to confirm the subscription, then delivers
// messages to handler from a single goroutine, in arrival order.
func (r *Redis) Subscribe(ctx context.Context, topic roomcast.Topic, handler func(*roomcast.DispatchMessage)) (roomcast.Subscription, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	channel := r.channel(topic)
	ps := r.rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = ps.Close()
		return nil, ErrClosed
	}
	r.subs[ps] = struct{}{}
	r.mu.Unlock()

	go r.consume(ps.Channel(), channel, handler)

	stop := context.AfterFunc(ctx, func() { _ = r.release(ps) })
	return &redisSubscription{bus: r, ps: ps, stop: stop}, nil
}

// Close ends every subscription. It does not close the redis client.
func (r *Redis) Close() error {
	r.mu.Lock()
	r.closed = true
	subs := r.subs
	r.subs = make(map[*redis.PubSub]struct{})
	r.mu.Unlock()

	var errs []error
	for ps := range subs {
		if err := ps.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Redis) consume(ch <-chan *redis.Message, channel string, handler func(*roomcast.DispatchMessage)) {
	for m := range ch {
		var msg roomcast.DispatchMessage
		if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
			r.logger.Warn("dropping undecodable dispatch",
				slog.String("channel", channel),
				slog.Any("error", err),
			)
			continue
		}
		handler(&msg)
	}
}

func (r *Redis) release(ps *redis.PubSub) error {
	r.mu.Lock()
	_, ok := r.subs[ps]
	delete(r.subs, ps)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return ps.Close()
}

type redisSubscription struct {
	bus  *Redis
	ps   *redis.PubSub
	stop func() bool
}

func (s *redisSubscription) Close() error {
	s.stop()
	return s.bus.release(s.ps)
}
