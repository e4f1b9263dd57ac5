package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-evaluator/internal/logger"
	"alfredoptarigan/resume-evaluator/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(candidateID string) bool
}

type WorkerOptions struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
	PollBatch    int
}

type worker struct {
	repo             repositories.CandidateRepository
	evaluatorService EvaluatorService
	jobQueue         chan string
	opts             WorkerOptions
	wg               sync.WaitGroup
	stopChan         chan struct{}
	stopOnce         sync.Once
	log              *zap.Logger

	// queued holds the ids waiting in jobQueue, so the poller does not
	// enqueue a pending record twice.
	mu     sync.Mutex
	queued map[string]struct{}
}

func NewWorker(
	repo repositories.CandidateRepository,
	evaluatorService EvaluatorService,
	opts WorkerOptions,
	log *zap.Logger,
) Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 100
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.PollBatch < 1 {
		opts.PollBatch = 10
	}

	return &worker{
		repo:             repo,
		evaluatorService: evaluatorService,
		jobQueue:         make(chan string, opts.QueueSize),
		opts:             opts,
		stopChan:         make(chan struct{}),
		log:              logger.WithFields(log, zap.String("component", "worker")),
		queued:           make(map[string]struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	w.log.Info("worker started",
		zap.Int("concurrency", w.opts.Concurrency),
		zap.Duration("poll_interval", w.opts.PollInterval),
	)
}

// Stop implements Worker. Jobs already running finish first.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("worker stopped")
	})
}

// EnqueueJob implements Worker. It never blocks: it reports false when the
// worker is stopped or the queue is full, leaving the record to the pending
// poller. An id that is already waiting in the queue is accepted once.
func (w *worker) EnqueueJob(candidateID string) bool {
	select {
	case <-w.stopChan:
		w.log.Warn("worker stopped, cannot enqueue job", zap.String(logger.FieldCandidateID, candidateID))
		return false
	default:
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.queued[candidateID]; ok {
		return true
	}

	select {
	case w.jobQueue <- candidateID:
		w.queued[candidateID] = struct{}{}
		w.log.Debug("job enqueued", zap.String(logger.FieldCandidateID, candidateID))
		return true
	default:
		w.log.Warn("job queue full", zap.String(logger.FieldCandidateID, candidateID), zap.Int("queue_size", cap(w.jobQueue)))
		return false
	}
}

func (w *worker) dequeued(candidateID string) {
	w.mu.Lock()
	delete(w.queued, candidateID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker_id", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case candidateID := <-w.jobQueue:
			w.dequeued(candidateID)
			if err := w.evaluatorService.EvaluateCandidate(ctx, candidateID); err != nil {
				log.Error("job failed", zap.String(logger.FieldCandidateID, candidateID), zap.Error(err))
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.repo.FindPendingJobs(ctx, w.opts.PollBatch)
			if err != nil {
				w.log.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pendingJobs) > 0 {
				w.log.Debug("found pending jobs", zap.Int("count", len(pendingJobs)))
			}

			for _, job := range pendingJobs {
				// full or stopped; the next tick tries again
				if !w.EnqueueJob(job.ID) {
					break
				}
			}
		}
	}
}
