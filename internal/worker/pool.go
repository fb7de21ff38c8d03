// Package worker provides background probing of preview audio.
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

const probeTimeout = 20 * time.Second

// Job represents a preview to probe.
type Job struct {
	TrackID    string
	PreviewURL string
}

// Pool manages background workers that probe previews and store the results.
type Pool struct {
	repo  ports.PreviewHintRepository
	jobs  chan Job
	wg    sync.WaitGroup
	probe func(ctx context.Context, url string) domain.PreviewHint
	now   func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
	closed  bool
}

// NewPool creates a worker pool with the given queue size.
func NewPool(repo ports.PreviewHintRepository, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		repo:    repo,
		jobs:    make(chan Job, queueSize),
		probe:   ProbePreviewFunc,
		now:     time.Now,
		pending: make(map[string]struct{}),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues a job without blocking. Jobs for a URL already queued are
// ignored, and jobs arriving while the queue is full are dropped.
func (p *Pool) Submit(job Job) {
	if job.PreviewURL == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if _, queued := p.pending[job.PreviewURL]; queued {
		return
	}

	select {
	case p.jobs <- job:
		p.pending[job.PreviewURL] = struct{}{}
	default:
		log.Printf("WARN worker: dropping probe for track %s", job.TrackID)
	}
}

// Hint returns the stored probe result for url, if any.
func (p *Pool) Hint(ctx context.Context, url string) (domain.PreviewHint, bool) {
	hint, err := p.repo.GetPreviewHint(ctx, url)
	if err != nil {
		if !errors.Is(err, ports.ErrHintNotFound) {
			log.Printf("WARN worker: failed to read preview hint: %v", err)
		}
		return domain.PreviewHint{}, false
	}
	return hint, true
}

func (p *Pool) processJob(job Job) {
	defer func() {
		p.mu.Lock()
		delete(p.pending, job.PreviewURL)
		p.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	if _, err := p.repo.GetPreviewHint(ctx, job.PreviewURL); err == nil {
		return
	}

	hint := p.probe(ctx, job.PreviewURL)
	hint.URL = job.PreviewURL
	hint.CheckedAt = p.now().UTC()

	if err := p.repo.SavePreviewHint(ctx, hint); err != nil {
		log.Printf("WARN worker: failed to store hint for track %s: %v", job.TrackID, err)
		return
	}
	if !hint.Playable {
		log.Printf("WARN worker: preview for track %s not playable: %s", job.TrackID, hint.Error)
		return
	}
	log.Printf("DEBUG worker: probed track %s (%s, %.1fs)", job.TrackID, hint.ContentType, hint.Seconds)
}
