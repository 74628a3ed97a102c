package messaging

import (
	"context"
	"fmt"
	"time"

	"sumo-service/internal/logger"
	"sumo-service/internal/types"

	"github.com/redis/go-redis/v9"
)

const (
	connectAttempts   = 5
	connectRetryDelay = time.Second
)

// RedisClient mirrors controller state onto the local bus. The
// surface is outbound only: the match controller takes no commands
// from Redis, so the client subscribes to nothing and pops no
// command lists.
type RedisClient struct {
	client *redis.Client
	logger *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRedisClient(host string, port int, l *logger.Logger) *RedisClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", host, port),
			DB:   0,
		}),
		logger: l,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect pings the server, retrying a few times to ride out boot
// ordering on the board.
func (r *RedisClient) Connect() error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = r.client.Ping(r.ctx).Err(); err == nil {
			r.logger.Infof("Connected to Redis at %s", r.client.Options().Addr)
			return nil
		}
		r.logger.Warnf("Redis connection attempt %d/%d failed: %v", attempt, connectAttempts, err)

		select {
		case <-r.ctx.Done():
			return r.ctx.Err()
		case <-time.After(connectRetryDelay):
		}
	}
	return fmt.Errorf("Redis connection failed: %w", err)
}

// publishHashSet atomically updates a hash field and publishes a
// notification
func (r *RedisClient) publishHashSet(hash, field string, value interface{}, channel, payload string) error {
	pipe := r.client.Pipeline()
	pipe.HSet(r.ctx, hash, field, value)
	pipe.Publish(r.ctx, channel, payload)
	_, err := pipe.Exec(r.ctx)
	return err
}

// publishHashDel atomically deletes a hash field and publishes a
// notification
func (r *RedisClient) publishHashDel(hash, field, channel, payload string) error {
	pipe := r.client.Pipeline()
	pipe.HDel(r.ctx, hash, field)
	pipe.Publish(r.ctx, channel, payload)
	_, err := pipe.Exec(r.ctx)
	return err
}

func (r *RedisClient) PublishBotState(state types.BotState) error {
	r.logger.Infof("Publishing bot state: %s", state)
	timestamp := time.Now().Format(time.RFC3339)

	pipe := r.client.Pipeline()
	pipe.HSet(r.ctx, "sumo", "state", string(state))
	pipe.HSet(r.ctx, "sumo", "state:timestamp", timestamp)
	pipe.Publish(r.ctx, "sumo", "state")
	_, err := pipe.Exec(r.ctx)

	if err != nil {
		r.logger.Warnf("Failed to publish bot state: %v", err)
		return err
	}
	return nil
}

func (r *RedisClient) PublishScanDirection(dir types.ScanDirection) error {
	r.logger.Debugf("Publishing scan direction: %s", dir)

	if err := r.publishHashSet("sumo", "scan-direction", dir.String(), "sumo", "scan-direction"); err != nil {
		r.logger.Warnf("Failed to publish scan direction: %v", err)
		return err
	}
	return nil
}

func (r *RedisClient) PublishDetection(seen bool) error {
	r.logger.Debugf("Publishing target detection: %v", seen)
	value := "false"
	if seen {
		value = "true"
	}

	if err := r.publishHashSet("sumo", "target:detected", value, "sumo", "target:detected"); err != nil {
		r.logger.Warnf("Failed to publish target detection: %v", err)
		return err
	}
	return nil
}

// PublishReadyDeadline publishes when the pre-activity delay will
// end, as a Unix timestamp
func (r *RedisClient) PublishReadyDeadline(deadline time.Time) error {
	if err := r.publishHashSet("sumo", "ready-deadline", deadline.Unix(), "sumo", "ready-deadline"); err != nil {
		r.logger.Warnf("Failed to publish ready deadline: %v", err)
		return err
	}
	return nil
}

// ClearReadyDeadline removes the pre-activity deadline once the
// delay has elapsed or at startup
func (r *RedisClient) ClearReadyDeadline() error {
	if err := r.publishHashDel("sumo", "ready-deadline", "sumo", "ready-deadline"); err != nil {
		r.logger.Warnf("Failed to clear ready deadline: %v", err)
		return err
	}
	return nil
}

// PublishMatchEvent appends one entry to the match event stream
// (armed, started, target-acquired, target-lost, boundary,
// evade-complete).
func (r *RedisClient) PublishMatchEvent(event string) error {
	r.logger.Debugf("Publishing match event: %s", event)

	pipe := r.client.Pipeline()
	pipe.XAdd(r.ctx, &redis.XAddArgs{
		Stream: "events:match",
		MaxLen: 1000,
		Values: map[string]interface{}{
			"event": event,
			"ts":    time.Now().Unix(),
		},
	})
	pipe.Publish(r.ctx, "sumo", "match-event")

	if _, err := pipe.Exec(r.ctx); err != nil {
		r.logger.Warnf("Failed to publish match event: %v", err)
		return err
	}
	return nil
}

// ReportFaultPresent reports a fault as present to Redis
func (r *RedisClient) ReportFaultPresent(code int, description string, timestamp int64, info string) error {
	r.logger.Infof("Reporting fault present: code=%d, description=%s", code, description)

	pipe := r.client.Pipeline()
	pipe.SAdd(r.ctx, "sumo:fault", code)

	eventData := map[string]interface{}{
		"group":       "sumo",
		"code":        code,
		"description": description,
		"ts":          timestamp,
	}
	if info != "" {
		eventData["info"] = info
	}
	pipe.XAdd(r.ctx, &redis.XAddArgs{
		Stream: "events:faults",
		MaxLen: 1000,
		Values: eventData,
	})

	pipe.Publish(r.ctx, "sumo", "fault")

	if _, err := pipe.Exec(r.ctx); err != nil {
		r.logger.Warnf("Failed to report fault present: %v", err)
		return err
	}
	return nil
}

// ReportFaultAbsent reports a fault as cleared. The negative code on
// the stream marks the clear event.
func (r *RedisClient) ReportFaultAbsent(code int) error {
	r.logger.Infof("Reporting fault absent: code=%d", code)

	pipe := r.client.Pipeline()
	pipe.SRem(r.ctx, "sumo:fault", code)
	pipe.XAdd(r.ctx, &redis.XAddArgs{
		Stream: "events:faults",
		MaxLen: 1000,
		Values: map[string]interface{}{
			"group": "sumo",
			"code":  -code,
		},
	})
	pipe.Publish(r.ctx, "sumo", "fault")

	if _, err := pipe.Exec(r.ctx); err != nil {
		r.logger.Warnf("Failed to report fault absent: %v", err)
		return err
	}
	return nil
}

// GetHashField reads a field from a Redis hash using HGET. Missing
// fields return an empty string.
func (r *RedisClient) GetHashField(hash, field string) (string, error) {
	value, err := r.client.HGet(r.ctx, hash, field).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get hash field %s from %s: %w", field, hash, err)
	}
	return value, nil
}

func (r *RedisClient) Close() error {
	r.logger.Infof("Closing Redis client")
	r.cancel()
	return r.client.Close()
}
