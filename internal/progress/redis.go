package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/docpack/internal/logging"
)

// DefaultRedisChannel is used when no channel name is configured.
const DefaultRedisChannel = "docpack:progress"

// Publisher is the subset of *redis.Client used by RedisSink.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisMessage is the payload published for each snapshot.
type RedisMessage struct {
	PackageID string   `json:"package_id"`
	Snapshot  Snapshot `json:"snapshot"`
}

// RedisSink publishes snapshots as JSON to a Redis channel so other
// processes can follow a run. Publish failures are logged and dropped.
type RedisSink struct {
	client    Publisher
	channel   string
	packageID string
	timeout   time.Duration
	logger    *logging.Logger
}

// NewRedisSink creates a sink for one package run.
func NewRedisSink(client Publisher, channel, packageID string, logger *logging.Logger) *RedisSink {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RedisSink{
		client:    client,
		channel:   channel,
		packageID: packageID,
		timeout:   2 * time.Second,
		logger:    logger.With("service", "RedisProgressSink", "channel", channel),
	}
}

// OnProgress publishes s.
func (r *RedisSink) OnProgress(s Snapshot) {
	raw, err := json.Marshal(RedisMessage{PackageID: r.packageID, Snapshot: s})
	if err != nil {
		r.logger.Warn("failed to encode progress", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, raw).Err(); err != nil {
		r.logger.Warn("failed to publish progress", "package_id", r.packageID, "error", err)
	}
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, &RedisError{Message: "redis ping failed", Cause: err}
	}
	return rdb, nil
}
