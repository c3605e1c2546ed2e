package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"greenbin_backend/internal/municipality"
	"greenbin_backend/platform/config"
	"greenbin_backend/platform/logger"
)

// digestCronSpec fires the municipality digests every morning at 06:00.
const digestCronSpec = "0 6 * * *"

// Periodic registers recurring tasks with asynq's scheduler.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewPeriodic creates the periodic scheduler and registers one daily digest
// entry per partner municipality.
func NewPeriodic(cfg config.SchedulerConfig, matcher *municipality.Matcher, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	scheduler := asynq.NewScheduler(opt, nil)
	for _, partner := range matcher.List() {
		task, err := NewMunicipalityDigestTask(MunicipalityDigestPayload{Municipality: partner.Code})
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(digestCronSpec, task, asynq.Queue(queue)); err != nil {
			return nil, fmt.Errorf("register digest for %s: %w", partner.Code, err)
		}
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run drives the cron entries until the context is cancelled.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	go func() {
		<-ctx.Done()
		p.scheduler.Shutdown()
	}()

	if err := p.scheduler.Run(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
	}
}
