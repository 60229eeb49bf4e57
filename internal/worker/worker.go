// Package worker consumes crawl events from the Redis queue and runs them
// through the discovery engine.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/engine"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/events"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
)

// popTimeout bounds each BRPOP so shutdown is noticed promptly.
const popTimeout = 2 * time.Second

// Worker drains the crawl-event queue. Each event is annotated in its own
// goroutine, bounded by a semaphore, so a slow domain (backoff, open
// breaker) never stalls the rest of the queue.
type Worker struct {
	client     *redis.Client
	engine     *engine.Engine
	publisher  *events.Publisher
	queue      string
	concurrent int
	log        logger.Logger

	wg  sync.WaitGroup
	sem chan struct{}
}

// New creates a crawl-event worker with the given concurrency.
func New(
	client *redis.Client,
	eng *engine.Engine,
	publisher *events.Publisher,
	queue string,
	concurrent int,
	log logger.Logger,
) *Worker {
	if concurrent < 1 {
		concurrent = 1
	}
	return &Worker{
		client:     client,
		engine:     eng,
		publisher:  publisher,
		queue:      queue,
		concurrent: concurrent,
		log:        log,
		sem:        make(chan struct{}, concurrent),
	}
}

// Run consumes the queue until ctx is cancelled, then waits for in-flight
// events to finish.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("crawl worker started",
		logger.String("queue", w.queue),
		logger.Int("concurrency", w.concurrent),
	)

	for {
		if ctx.Err() != nil {
			break
		}

		result, err := w.client.BRPop(ctx, popTimeout, w.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			w.log.Error("crawl queue pop failed", logger.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}
		// BRPop returns [key, value].
		if len(result) != 2 {
			continue
		}
		w.dispatch(ctx, []byte(result[1]))
	}

	w.wg.Wait()
	w.log.Info("crawl worker stopped")
	return nil
}

func (w *Worker) dispatch(ctx context.Context, payload []byte) {
	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.sem }()
		w.process(ctx, payload)
	}()
}

func (w *Worker) process(ctx context.Context, payload []byte) {
	var event engine.CrawlEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		w.log.Warn("dropping malformed crawl event", logger.Error(err))
		return
	}

	annotation, err := w.engine.Annotate(ctx, event)
	if err != nil {
		w.log.Warn("annotation failed",
			logger.String("url", event.URL),
			logger.Error(err),
		)
		return
	}

	w.log.Debug("crawl event annotated",
		logger.String("url", annotation.URL),
		logger.String("domain", annotation.Domain),
		logger.String("tier", string(annotation.Tier)),
		logger.String("country", annotation.Geo.CountryCode),
		logger.Bool("duplicate", annotation.Duplicate),
	)

	w.publisher.PublishTelemetry(ctx, events.TelemetryEvent{
		URL:         annotation.URL,
		Domain:      annotation.Domain,
		Tier:        string(annotation.Tier),
		CountryCode: annotation.Geo.CountryCode,
		Confidence:  annotation.Geo.Confidence.String(),
		Duplicate:   annotation.Duplicate,
	})
}
