package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/hkb-commerce/storefront-backend/pkg/config"
	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/outbox"
)

// publisher is the broker surface the drain loop needs; *pubsub.Client
// satisfies it.
type publisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// publisherService drains the outbox table into the broker.
type publisherService struct {
	repo      outbox.Repository
	publisher publisher
	cfg       config.OutboxConfig
}

func newPublisherService(repo outbox.Repository, pub publisher, cfg config.OutboxConfig) (*publisherService, error) {
	if repo == nil || pub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "publisher service requires a repository and a publisher")
	}
	return &publisherService{repo: repo, publisher: pub, cfg: cfg}, nil
}

// run polls until ctx is cancelled. The interval is jittered so replicas
// do not thunder together.
func (s *publisherService) run(ctx context.Context) {
	log := logger.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(jitter(s.cfg.PollInterval)):
		}

		published, err := s.drainOnce(ctx)
		if err != nil {
			log.WithFields(pkgerrors.Dump(err)).Error(err, "outbox drain failed")
			continue
		}
		if published > 0 {
			log.WithField("published", published).Info("outbox events published")
		}
	}
}

func (s *publisherService) drainOnce(ctx context.Context) (int, error) {
	events, err := s.repo.FetchUnpublished(ctx, s.cfg.BatchSize, s.cfg.MaxAttempts)
	if err != nil {
		return 0, err
	}

	published := 0
	for i := range events {
		if err := s.publishOne(ctx, &events[i]); err != nil {
			if markErr := s.repo.MarkFailed(ctx, events[i].ID.String(), err); markErr != nil {
				return published, markErr
			}
			continue
		}
		if err := s.repo.MarkPublished(ctx, events[i].ID.String()); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}

func (s *publisherService) publishOne(ctx context.Context, event *models.OutboxEvent) error {
	_, err := s.publisher.Publish(ctx, event.Payload, map[string]string{
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID,
	})
	return err
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		base = 5 * time.Second
	}
	spread := base / 5
	return base - spread/2 + time.Duration(rand.Int63n(int64(spread)+1))
}
