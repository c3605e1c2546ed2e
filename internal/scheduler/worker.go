package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"greenbin_backend/platform/config"
	"greenbin_backend/platform/logger"
)

// Notifier performs the delivery work behind queued tasks.
// Implemented by the notification service.
type Notifier interface {
	SendReportAck(ctx context.Context, reportID uuid.UUID) error
	SendMunicipalityDigest(ctx context.Context, municipality string) error
}

// Worker consumes background tasks and delegates to the notifier.
type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	notifications Notifier
	log           *logger.Logger
}

// NewWorker creates an asynq worker bound to the configured redis queue.
func NewWorker(cfg config.SchedulerConfig, notifications Notifier, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:        server,
		mux:           mux,
		notifications: notifications,
		log:           log,
	}

	mux.HandleFunc(TaskReportAck, w.handleReportAck)
	mux.HandleFunc(TaskMunicipalityDigest, w.handleMunicipalityDigest)

	return w, nil
}

// Run processes tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleReportAck(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReportAckPayload(task)
	if err != nil {
		return err
	}

	reportID, err := uuid.Parse(payload.ReportID)
	if err != nil {
		return err
	}

	return w.notifications.SendReportAck(ctx, reportID)
}

func (w *Worker) handleMunicipalityDigest(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseMunicipalityDigestPayload(task)
	if err != nil {
		return err
	}

	return w.notifications.SendMunicipalityDigest(ctx, payload.Municipality)
}
