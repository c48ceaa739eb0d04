package streamauth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditEvent describes one credential-lifecycle occurrence. Events carry
// identities and token prefixes only, never codes, tokens, or passwords.
type AuditEvent struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Identity  string            `json:"identity,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink consumes events emitted by the engine. Emit runs on the
// dispatcher goroutine, never on the request path.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards all events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink forwards events to a buffered channel for consumers that
// want to process them in their own goroutine.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// ZapSink writes each event as one structured log line.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil || s.logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("audit_id", event.ID),
		zap.Time("ts", event.Timestamp),
		zap.String("event", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.Identity != "" {
		fields = append(fields, zap.String("identity", event.Identity))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error_code", event.Error))
	}
	for k, v := range event.Metadata {
		fields = append(fields, zap.String("meta_"+k, v))
	}

	s.logger.Info("audit", fields...)
}
