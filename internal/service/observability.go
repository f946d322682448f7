package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"
)

// UseCaseEvent is one finished service operation: what ran, how long it
// took, and whether it succeeded.
type UseCaseEvent struct {
	Name     string
	Duration time.Duration
	Err      error

	// Fields carries operation-specific detail, e.g. the initiative id
	// and the edited field.
	Fields map[string]any
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes use-case events to the provided writer as
// slog text lines. This is the BEACON_DEBUG surface.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"name", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"ok", event.Err == nil,
	)
	// Deterministic field order keeps the debug stream diffable.
	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, event.Fields[k])
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.WarnContext(ctx, "use_case", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "use_case", attrs...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// observe reports one finished use case to the observer.
func observe(ctx context.Context, obs UseCaseObserver, name string, start time.Time, err error, fields map[string]any) {
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:     name,
		Duration: time.Since(start),
		Err:      err,
		Fields:   fields,
	})
}
