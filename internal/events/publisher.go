// Package events publishes discovery outcomes to Redis: promoted seed
// URLs onto the crawler's work queue and annotation telemetry onto a
// pub/sub channel for dashboards.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
)

// Publisher pushes events to Redis. A nil Publisher is safe to call and
// drops everything, so wiring stays unconditional when Redis is disabled.
type Publisher struct {
	client           *redis.Client
	seedQueue        string
	telemetryChannel string
	log              logger.Logger
}

// NewPublisher creates a Redis-backed publisher.
func NewPublisher(client *redis.Client, seedQueue, telemetryChannel string, log logger.Logger) *Publisher {
	return &Publisher{
		client:           client,
		seedQueue:        seedQueue,
		telemetryChannel: telemetryChannel,
		log:              log,
	}
}

// SeedEvent is the payload pushed onto the seed queue for each promoted
// domain.
type SeedEvent struct {
	URL        string    `json:"url"`
	Discovered time.Time `json:"discovered_at"`
}

// PublishSeedURL pushes a promoted domain's URL onto the crawl seed queue.
func (p *Publisher) PublishSeedURL(ctx context.Context, url string) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload, err := json.Marshal(SeedEvent{URL: url, Discovered: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal seed event: %w", err)
	}
	if err := p.client.LPush(ctx, p.seedQueue, payload).Err(); err != nil {
		return fmt.Errorf("push seed event: %w", err)
	}
	p.log.Debug("seed published", logger.String("url", url), logger.String("queue", p.seedQueue))
	return nil
}

// TelemetryEvent summarizes one processed crawl event for subscribers.
type TelemetryEvent struct {
	URL         string    `json:"url"`
	Domain      string    `json:"domain"`
	Tier        string    `json:"tier"`
	CountryCode string    `json:"country_code"`
	Confidence  string    `json:"confidence"`
	Duplicate   bool      `json:"duplicate"`
	ProcessedAt time.Time `json:"processed_at"`
}

// PublishTelemetry fans an annotation outcome out on the telemetry
// channel. Fire and forget: failures are logged, never returned.
func (p *Publisher) PublishTelemetry(ctx context.Context, event TelemetryEvent) {
	if p == nil || p.client == nil {
		return
	}

	event.ProcessedAt = time.Now()
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal telemetry event", logger.Error(err))
		return
	}
	if err := p.client.Publish(ctx, p.telemetryChannel, payload).Err(); err != nil {
		p.log.Warn("telemetry publish failed", logger.Error(err))
	}
}
