package catalog

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) StorageServiceCreated(ctx context.Context, svc *StorageService) error {
	return nil
}

func (n *NoopEventSink) StorageServiceUpdated(ctx context.Context, svc *StorageService) error {
	return nil
}

func (n *NoopEventSink) StorageServiceDeleted(ctx context.Context, id string) error {
	return nil
}

// LogEventSink writes every event to a structured logger.
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink logging to logger, or to the
// default logger when logger is nil.
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

func (l *LogEventSink) StorageServiceCreated(ctx context.Context, svc *StorageService) error {
	l.logger.InfoContext(ctx, "Storage service created",
		"id", svc.ID, "name", svc.Name, "service_type", svc.ServiceType)
	return nil
}

func (l *LogEventSink) StorageServiceUpdated(ctx context.Context, svc *StorageService) error {
	attrs := []any{"id", svc.ID, "name", svc.Name}
	if svc.Version != nil {
		attrs = append(attrs, "version", *svc.Version)
	}
	if svc.ChangeDescription != nil {
		attrs = append(attrs, "fields", svc.ChangeDescription.FieldNames())
	}
	l.logger.InfoContext(ctx, "Storage service updated", attrs...)
	return nil
}

func (l *LogEventSink) StorageServiceDeleted(ctx context.Context, id string) error {
	l.logger.InfoContext(ctx, "Storage service deleted", "id", id)
	return nil
}
