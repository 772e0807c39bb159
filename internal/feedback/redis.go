package feedback

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"control_panel/internal/logger"
	"control_panel/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 2 * time.Second

// RedisClient is the subset of *redis.Client the publisher needs.
type RedisClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher mirrors each panel into a hash at <prefix><panel_id> and
// publishes every event as JSON on one channel.
type RedisPublisher struct {
	client    RedisClient
	channel   string
	keyPrefix string
	log       *logger.Logger
}

func NewRedisPublisher(client RedisClient, channel, keyPrefix string, log *logger.Logger) *RedisPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisPublisher{client: client, channel: channel, keyPrefix: keyPrefix, log: log.Named("redis")}
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (p *RedisPublisher) Publish(ev models.FeedbackEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	key := p.keyPrefix + ev.PanelID
	if fields := hashFields(ev); len(fields) > 0 {
		if err := p.client.HSet(ctx, key, fields).Err(); err != nil {
			p.log.Warnw("redis_hset_failed", "key", key, "error", err)
		}
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Errorw("feedback_marshal_failed", "panel_id", ev.PanelID, "error", err)
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warnw("redis_publish_failed", "channel", p.channel, "error", err)
	}
}

func hashFields(ev models.FeedbackEvent) map[string]interface{} {
	fields := map[string]interface{}{}
	switch ev.Kind {
	case models.FeedbackArmed:
		if ev.Armed != nil {
			fields["armed"] = strconv.FormatBool(*ev.Armed)
		}
	case models.FeedbackPower:
		if ev.Powered != nil {
			fields["powered"] = strconv.FormatBool(*ev.Powered)
		}
	case models.FeedbackMessage:
		fields["message"] = ev.Message
	case models.FeedbackState:
		if ev.State != nil {
			fields["state"] = ev.State.State
			fields["fail-count"] = strconv.Itoa(ev.State.FailCount)
		}
	}
	if len(fields) > 0 {
		fields["updated-at"] = ev.At.Format(time.RFC3339Nano)
	}
	return fields
}
