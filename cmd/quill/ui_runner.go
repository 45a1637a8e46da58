package main

import (
	"context"
	"os"

	"quill/internal/driver"
	"quill/internal/engine"
	"quill/internal/ui"
)

type compileOutcome struct {
	results []*driver.Result
	err     error
}

// attachProgress routes the phase and result hooks of opts into a channel
// for the progress view. It must run before the session is created.
func attachProgress(opts *driver.Options) chan ui.Event {
	events := make(chan ui.Event, 256)
	opts.Observer = chainObserver(opts.Observer, func(path string, ev engine.PhaseEvent) {
		if ev.Status == engine.PhaseStart {
			events <- ui.Event{Path: path, Phase: ev.Name, Status: ui.StatusWorking}
		}
	})
	opts.OnResult = chainOnResult(opts.OnResult, func(r *driver.Result) {
		status := ui.StatusDone
		if r.Bag.HasErrors() {
			status = ui.StatusError
		}
		events <- ui.Event{Path: r.Path, Status: status}
	})
	return events
}

// compileWithUI runs the session while the progress view follows it on
// stderr.
func compileWithUI(ctx context.Context, title string, files []string, s *driver.Session, events chan ui.Event) ([]*driver.Result, error) {
	outcomeCh := make(chan compileOutcome, 1)
	go func() {
		res, err := s.CompileAll(ctx)
		outcomeCh <- compileOutcome{results: res, err: err}
		close(events)
	}()

	uiErr := ui.Run(os.Stderr, title, files, len(s.Engine.Phases()), events)
	// если UI упал раньше, не блокируем компиляцию
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

func chainObserver(first, next driver.PhaseObserver) driver.PhaseObserver {
	if first == nil {
		return next
	}
	return func(path string, ev engine.PhaseEvent) {
		first(path, ev)
		next(path, ev)
	}
}

func chainOnResult(first, next func(*driver.Result)) func(*driver.Result) {
	if first == nil {
		return next
	}
	return func(r *driver.Result) {
		first(r)
		next(r)
	}
}
