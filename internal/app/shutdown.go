package app

import (
	"context"

	"alfredoptarigan/resume-evaluator/internal/services"
)

// Shutdown stops the process in order: the worker drains the runs it has
// started, then the server stops, then the root context is cancelled. A run
// cut off midway would stay in processing, since the poller only resumes
// pending records.
func Shutdown(worker services.Worker, stopServer func() error, cancel context.CancelFunc) error {
	worker.Stop()
	err := stopServer()
	cancel()
	return err
}
