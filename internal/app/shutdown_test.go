package app

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type drainingWorker struct {
	ctx   context.Context
	steps *[]string
}

func (w *drainingWorker) Start(context.Context) {}

func (w *drainingWorker) EnqueueJob(string) bool { return false }

func (w *drainingWorker) Stop() {
	if w.ctx.Err() != nil {
		*w.steps = append(*w.steps, "worker-after-cancel")
		return
	}
	*w.steps = append(*w.steps, "worker")
}

func TestShutdownDrainsWorkerFirst(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var steps []string
	worker := &drainingWorker{ctx: ctx, steps: &steps}

	err := Shutdown(worker, func() error {
		steps = append(steps, "server")
		return nil
	}, func() {
		steps = append(steps, "cancel")
		cancel()
	})
	if err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}

	if got := strings.Join(steps, ","); got != "worker,server,cancel" {
		t.Fatalf("unexpected shutdown order %s", got)
	}
	if ctx.Err() == nil {
		t.Fatalf("expected the root context to be cancelled")
	}
}

func TestShutdownReturnsServerError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var steps []string
	boom := errors.New("listener busy")

	err := Shutdown(&drainingWorker{ctx: ctx, steps: &steps}, func() error { return boom }, cancel)
	if !errors.Is(err, boom) {
		t.Fatalf("expected server error, got %v", err)
	}
	if ctx.Err() == nil {
		t.Fatalf("expected cancel to run even when the server fails to stop")
	}
}
