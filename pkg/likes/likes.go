package likes

import (
	"context"
	"errors"
	"time"
)

// Event is emitted once per widget instance on the unliked → liked
// transition.
type Event struct {
	Widget    string    `json:"widget"`
	SessionID string    `json:"session_id"`
	LikedAt   time.Time `json:"liked_at"`
}

// Recorder persists or forwards like events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, ev Event) error

// Record calls f(ctx, ev).
func (f RecorderFunc) Record(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Discard is a Recorder that drops every event.
var Discard Recorder = RecorderFunc(func(context.Context, Event) error { return nil })

type multi []Recorder

// Multi returns a Recorder that hands each event to every recorder in order.
// All recorders run even if one fails; failures are joined.
func Multi(recorders ...Recorder) Recorder {
	var out multi
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multi) Record(ctx context.Context, ev Event) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
