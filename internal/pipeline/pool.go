package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"vidmill/internal/cache"
	"vidmill/internal/jobs"
	"vidmill/internal/keyframes"
	"vidmill/internal/logging"
	"vidmill/internal/services"
	"vidmill/internal/services/whisper"
)

// ModelLoader produces the warm transcription handle a worker holds for its
// lifetime. It is invoked once per worker at pool startup.
type ModelLoader func(ctx context.Context, workerID int) (Transcriber, error)

// WhisperLoader builds a ModelLoader over the uvx-managed whisper
// environment. Each worker gets its own handle so a cold first load in one
// worker never blocks the others.
func WhisperLoader(cfg whisper.Config) ModelLoader {
	return func(ctx context.Context, workerID int) (Transcriber, error) {
		return whisper.Load(ctx, cfg)
	}
}

// Deps bundles the external-tool clients a pool hands to its workers.
type Deps struct {
	Fetcher Fetcher
	Audio   AudioExtractor
	Grabber keyframes.Grabber
	Prober  DurationProber
	Loader  ModelLoader
}

// Pool runs a fixed set of warm workers over a job list. Workers are sized
// once at startup and jobs are pulled from a shared channel, so a slow video
// never idles the rest of the pool.
type Pool struct {
	settings Settings
	layout   cache.Layout
	deps     Deps
	logger   *slog.Logger
}

func NewPool(settings Settings, layout cache.Layout, deps Deps, logger *slog.Logger) *Pool {
	return &Pool{settings: settings, layout: layout, deps: deps, logger: logging.NewComponentLogger(logger, "pipeline")}
}

// workerCount bounds pool size by the configured maximum, the machine, and
// the amount of work, with a floor of one.
func workerCount(configured, cpuCount, jobCount int) int {
	n := configured
	if cpuCount < n {
		n = cpuCount
	}
	if jobCount < n {
		n = jobCount
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Run processes every job and returns exactly one result per job, in
// completion order. Per-job failures are folded into results; Run itself
// never fails.
func (p *Pool) Run(ctx context.Context, queue []jobs.Job) []JobResult {
	if len(queue) == 0 {
		return nil
	}

	count := workerCount(p.settings.MaxWorkers, runtime.NumCPU(), len(queue))
	p.logger.Info("worker pool starting",
		logging.String(logging.FieldEventType, "pool_start"),
		logging.Int("workers", count),
		logging.Int("jobs", len(queue)),
	)

	jobsCh := make(chan jobs.Job)
	resultsCh := make(chan JobResult, len(queue))
	workersDone := make(chan struct{})

	var wg sync.WaitGroup
	for id := 1; id <= count; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.runWorker(ctx, id, jobsCh, resultsCh)
		}(id)
	}
	go func() {
		wg.Wait()
		close(workersDone)
	}()

	// Feed jobs until the queue drains. If every worker retires during model
	// initialization, or the run is canceled, the undispatched remainder is
	// failed in place so the result count still matches the job count.
feed:
	for i := range queue {
		select {
		case jobsCh <- queue[i]:
		case <-workersDone:
			for _, job := range queue[i:] {
				resultsCh <- dispatchFailure(job, "no workers available: model initialization failed")
			}
			break feed
		case <-ctx.Done():
			for _, job := range queue[i:] {
				resultsCh <- dispatchFailure(job, "run canceled before dispatch")
			}
			break feed
		}
	}

	close(jobsCh)
	<-workersDone
	close(resultsCh)

	results := make([]JobResult, 0, len(queue))
	for result := range resultsCh {
		results = append(results, result)
	}
	return results
}

// runWorker loads one warm model and then drains jobs until the channel
// closes. A failed load retires just this worker slot.
func (p *Pool) runWorker(ctx context.Context, id int, jobsCh <-chan jobs.Job, resultsCh chan<- JobResult) {
	workerCtx := services.WithWorkerID(ctx, id)
	logger := logging.WithContext(workerCtx, p.logger)

	model, err := p.deps.Loader(workerCtx, id)
	if err != nil {
		logger.Error("model load failed, worker retiring",
			logging.String(logging.FieldEventType, "worker_init_failed"),
			logging.Error(err),
		)
		return
	}
	logger.Info("worker ready", logging.String(logging.FieldEventType, "worker_ready"))

	w := &worker{
		id:       id,
		settings: p.settings,
		layout:   p.layout,
		fetcher:  p.deps.Fetcher,
		audio:    p.deps.Audio,
		grabber:  p.deps.Grabber,
		prober:   p.deps.Prober,
		model:    model,
		logger:   p.logger,
	}
	for job := range jobsCh {
		resultsCh <- w.Process(workerCtx, job)
	}
}

func dispatchFailure(job jobs.Job, reason string) JobResult {
	return JobResult{
		VideoID:     job.VideoID,
		Title:       job.Title,
		URL:         job.URL,
		ProcessedAt: time.Now().UTC(),
		Outcome:     OutcomeFailed,
		Error:       reason,
	}
}
