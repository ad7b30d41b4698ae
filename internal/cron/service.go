package cron

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/metrics"
)

// ServiceParams wires the cron runner.
type ServiceParams struct {
	Registry *Registry
	Lock     *RedisLock
	Metrics  *metrics.CronJobMetrics
}

// Service runs registered jobs on their intervals until the context ends.
type Service struct {
	registry *Registry
	lock     *RedisLock
	metrics  *metrics.CronJobMetrics
}

// NewService validates params and builds the runner.
func NewService(params ServiceParams) (*Service, error) {
	if params.Registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cron service requires a registry")
	}
	if params.Lock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cron service requires a lock")
	}
	return &Service{
		registry: params.Registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
	}, nil
}

// Run blocks until ctx is cancelled, ticking every job on its own interval.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.registry.Jobs() {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.loop(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (s *Service) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

func (s *Service) runOnce(ctx context.Context, job Job) {
	log := logger.FromContext(ctx).WithField("job", job.Name())

	acquired, err := s.lock.Acquire(ctx, job.Name())
	if err != nil {
		log.Error(err, "acquire cron lock")
		return
	}
	if !acquired {
		return
	}
	defer func() {
		if releaseErr := s.lock.Release(ctx, job.Name()); releaseErr != nil {
			log.Error(releaseErr, "release cron lock")
		}
	}()

	started := time.Now()
	runErr := job.Run(ctx)
	elapsed := time.Since(started)

	result := "ok"
	if runErr != nil {
		result = "error"
		log.WithFields(pkgerrors.Dump(runErr)).Error(runErr, "cron job failed")
	} else {
		log.WithField("elapsed", elapsed.String()).Info("cron job finished")
	}

	if s.metrics != nil {
		s.metrics.Runs.WithLabelValues(job.Name(), result).Inc()
		s.metrics.Duration.WithLabelValues(job.Name()).Observe(elapsed.Seconds())
	}
}
