// Package notify publishes playlist changes to a Redis pub/sub channel.
//
// A [Publisher] is an editor subscriber. Publishing is best effort: failures are logged and never
// reach the edit that triggered them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/editor"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/redis/go-redis/v9"
)

// EventPlaylistUpdated is the type of every event the publisher sends.
const EventPlaylistUpdated = "playlist.updated"

const defaultPublishTimeout = 2 * time.Second

// Event is the JSON message published on the channel.
type Event struct {
	Type     string          `json:"type"`
	Playlist editor.Snapshot `json:"playlist"`
}

// Publisher sends snapshots to a Redis channel.
type Publisher struct {
	rdb     *redis.Client
	channel string
	timeout time.Duration
	logger  *log.Logger
}

// Dial connects to the Redis server described by cfg and verifies it with a ping.
func Dial(ctx context.Context, cfg shared.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis addr is empty", shared.ErrMissingConfig)
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%w: redis: %w", shared.ErrServiceUnavailable, err)
	}
	return rdb, nil
}

// New creates a Publisher. An empty channel uses "broadcast".
func New(rdb *redis.Client, channel string, logger *log.Logger) *Publisher {
	if channel == "" {
		channel = "broadcast"
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Publisher{
		rdb:     rdb,
		channel: channel,
		timeout: defaultPublishTimeout,
		logger:  shared.WithLogger(logger, "component", "notify"),
	}
}

// Notify publishes s as a [EventPlaylistUpdated] event. It is shaped to be passed to editor.Subscribe.
func (p *Publisher) Notify(s editor.Snapshot) {
	if p.rdb == nil {
		return
	}

	data, err := json.Marshal(Event{Type: EventPlaylistUpdated, Playlist: s})
	if err != nil {
		p.logger.Error("marshal event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, p.channel, string(data)).Err(); err != nil {
		p.logger.Warn("publish event", "channel", p.channel, "error", err)
		return
	}
	p.logger.Debug("published", "channel", p.channel, "tracks", len(s.Tracks))
}
