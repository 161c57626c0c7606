package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"celluiq/config"
)

// MarkersChanged signalisiert, dass neue Messwerte für einen Nutzer gespeichert wurden.
type MarkersChanged struct {
	UserID      string    `json:"user_id"`
	BloodWorkID string    `json:"blood_work_id,omitempty"`
	Source      string    `json:"source"`
	MarkerCount int       `json:"marker_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher verteilt MarkersChanged-Events.
type Publisher interface {
	PublishMarkersChanged(ctx context.Context, evt MarkersChanged) error
	Close() error
}

// NopPublisher verwirft alle Events.
type NopPublisher struct{}

func (NopPublisher) PublishMarkersChanged(context.Context, MarkersChanged) error { return nil }
func (NopPublisher) Close() error                                                { return nil }

// KeyDeleter entfernt Cache-Einträge.
type KeyDeleter interface {
	Delete(ctx context.Context, keys ...string) error
}

// InvalidatingPublisher löscht abgeleitete Ansichten des Nutzers aus dem Cache,
// bevor das Event weitergereicht wird.
type InvalidatingPublisher struct {
	Next   Publisher
	Cache  KeyDeleter
	Keys   func(evt MarkersChanged) []string
	Logger *zap.Logger
}

func (p *InvalidatingPublisher) PublishMarkersChanged(ctx context.Context, evt MarkersChanged) error {
	if keys := p.Keys(evt); len(keys) > 0 {
		if err := p.Cache.Delete(ctx, keys...); err != nil {
			p.Logger.Warn("Cache invalidation failed", zap.String("user_id", evt.UserID), zap.Error(err))
		}
	}
	return p.Next.PublishMarkersChanged(ctx, evt)
}

func (p *InvalidatingPublisher) Close() error {
	return p.Next.Close()
}

// NewPublisher wählt das Backend anhand von EVENTS_BACKEND.
func NewPublisher(cfg *config.Config, rdb redis.UniversalClient, logger *zap.Logger) (Publisher, error) {
	switch strings.ToLower(cfg.EventsBackend) {
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis events backend requires a redis client")
		}
		return NewRedisPublisher(rdb, cfg.EventsChannel), nil
	case "kafka":
		return NewKafkaPublisher(cfg.Brokers(), cfg.KafkaTopic, logger)
	case "", "none":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}
