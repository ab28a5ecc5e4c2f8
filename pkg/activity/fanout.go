package activity

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Fanout dispatches events to every configured sink.
type Fanout struct {
	sinks []Sink
	log   Logger
}

// NewFanout builds a dispatcher over sinks; nil entries are dropped.
func NewFanout(sinks []Sink, log Logger) *Fanout {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Fanout{sinks: cp, log: ensureLogger(log)}
}

// Publish forwards the event to every sink and returns how many accepted it.
// Failures are joined; one failing sink does not stop the others.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.sinks) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, s := range f.sinks {
		if err := s.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s sink[%s]: %w", s.Type(), s.ID(), err))
			continue
		}
		successful++
	}
	if err := errors.Join(errs...); err != nil {
		f.log.WarnObj("activity delivery incomplete", "activity_error", map[string]any{
			"kind":      evt.Kind,
			"delivered": successful,
			"sinks":     len(f.sinks),
			"error":     err.Error(),
		})
		return successful, err
	}
	return successful, nil
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Close releases sink resources (Pub/Sub clients).
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeAll(f.sinks)
}

func closeAll(sinks []Sink) error {
	var errs []error
	for _, s := range sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
