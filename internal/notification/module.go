package notification

import (
	"context"

	"greenbin_backend/internal/events"
	"greenbin_backend/internal/scheduler"
	"greenbin_backend/platform/logger"
)

// Module wires the notification service to the event bus.
type Module struct {
	service *Service
	tasks   scheduler.AckScheduler
	log     *logger.Logger
}

// New creates the notification module. The task scheduler may be nil; report
// acknowledgements are then sent inline on the event handler goroutine.
func New(service *Service, tasks scheduler.AckScheduler, log *logger.Logger) *Module {
	return &Module{service: service, tasks: tasks, log: log}
}

// Service exposes the notification service for the worker binary.
func (m *Module) Service() *Service { return m.service }

// RegisterHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ReportSubmitted{}.EventName(), events.HandlerFunc(m.onReportSubmitted))
}

func (m *Module) onReportSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(events.ReportSubmitted)
	if !ok {
		return nil
	}

	if m.tasks != nil {
		err := m.tasks.EnqueueReportAck(ctx, scheduler.ReportAckPayload{ReportID: submitted.ReportID.String()})
		if err == nil {
			return nil
		}
		m.log.Warn("failed to enqueue report ack, sending inline", "reportId", submitted.ReportID, "error", err)
	}

	return m.service.SendReportAck(ctx, submitted.ReportID)
}
