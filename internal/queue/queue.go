package queue

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is one fire-and-forget side effect, e.g. an FAQ view-count touch. Errc
// is optional for callers that do want the result.
type Job struct {
	Fn   func() error
	Errc chan error
}

// SideEffectRunner bounds the concurrency of backend side effects so a burst
// of widget interactions cannot flood the API.
type SideEffectRunner struct {
	jobs       chan Job
	maxWorkers int
	log        *logrus.Logger
	wg         sync.WaitGroup
}

func NewSideEffectRunner(queueSize, maxWorkers int, log *logrus.Logger) *SideEffectRunner {
	if log == nil {
		log = logrus.New()
	}
	runner := &SideEffectRunner{
		jobs:       make(chan Job, queueSize),
		maxWorkers: maxWorkers,
		log:        log,
	}
	runner.startWorkers()
	return runner
}

func (r *SideEffectRunner) startWorkers() {
	for i := 0; i < r.maxWorkers; i++ {
		r.wg.Add(1)
		go func(workerID int) {
			defer r.wg.Done()
			for job := range r.jobs {
				err := job.Fn()
				if err != nil {
					r.log.WithError(err).WithField("worker", workerID).Debug("side effect failed")
				}
				if job.Errc != nil {
					job.Errc <- err
				}
			}
		}(i)
	}
}

// Enqueue submits a job. A full queue drops the job instead of blocking the
// UI action that produced it.
func (r *SideEffectRunner) Enqueue(job Job) {
	select {
	case r.jobs <- job:
	default:
		r.log.Warn("side effect queue full, dropping job")
		if job.Errc != nil {
			job.Errc <- nil
		}
	}
}

// Depth reports jobs waiting in the queue, exported for the ops endpoint.
func (r *SideEffectRunner) Depth() int {
	return len(r.jobs)
}

func (r *SideEffectRunner) Shutdown() {
	close(r.jobs)
	r.wg.Wait()
}
