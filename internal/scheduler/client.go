// Package scheduler implements the session expiry policy with asynq: every
// new request schedules one expiry task at the session TTL, and the worker
// clears the conversation when it fires. The policy lives outside the
// dispatch core; without Redis the core simply keeps sessions for the
// process lifetime.
package scheduler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"onepath_dispatch_backend/internal/events"
)

type Client struct {
	client *asynq.Client
	ttl    time.Duration
}

// NewClient creates the expiry scheduling client.
func NewClient(redisURL string, ttl time.Duration) (*Client, error) {
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		ttl:    ttl,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleSessionExpiry enqueues one expiry task for the request, due at the
// session TTL from now.
func (c *Client) ScheduleSessionExpiry(ctx context.Context, requestID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewSessionExpireTask(SessionExpirePayload{RequestID: requestID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessIn(c.ttl))
	return err
}

// SubscribeToRequests schedules an expiry for every new dispatch request
// published on the bus.
func (c *Client) SubscribeToRequests(bus events.Bus) {
	bus.Subscribe(events.DispatchRequested{}.EventName(), events.HandlerFunc(
		func(ctx context.Context, event events.Event) error {
			requested, ok := event.(events.DispatchRequested)
			if !ok {
				return nil
			}
			return c.ScheduleSessionExpiry(ctx, requested.RequestID)
		}))
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
