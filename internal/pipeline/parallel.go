package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// ParallelConfig holds configuration for parallel processing.
type ParallelConfig struct {
	MaxWorkers       int                     `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"` // 0 = runtime.NumCPU()
	ProgressCallback ProgressCallback        `mapstructure:"-" yaml:"-" json:"-"`                               // Optional progress reporting
	ErrorHandler     func(int, *Page, error) `mapstructure:"-" yaml:"-" json:"-"`                               // Optional per-page error handler
}

// DefaultParallelConfig returns sensible defaults for parallel processing.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{MaxWorkers: runtime.NumCPU()}
}

type pageJob struct {
	index int
	page  *Page
}

type pageResult struct {
	index int
	err   error
}

// ParallelStats holds statistics about parallel processing performance.
type ParallelStats struct {
	TotalPages       int           `json:"total_pages"`
	ProcessedPages   int           `json:"processed_pages"`
	FailedPages      int           `json:"failed_pages"`
	WorkerCount      int           `json:"worker_count"`
	TotalDuration    time.Duration `json:"total_duration_ns"`
	AveragePerPage   time.Duration `json:"average_per_page_ns"`
	ThroughputPerSec float64       `json:"throughput_per_sec"`
	Errors           []error       `json:"-"`
}

// ProcessPagesParallel processes pages with a worker pool. Pages share no
// state, so each worker runs the whole pipeline on one page at a time.
// Per-page errors are returned in stats.Errors by input index; the returned
// error is the first of them, or the context error.
func (p *Pipeline) ProcessPagesParallel(ctx context.Context, pages []*Page, config ParallelConfig) (*ParallelStats, error) {
	if len(pages) == 0 {
		return nil, errors.New("no pages provided")
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}
	workers := min(config.MaxWorkers, len(pages))

	if config.ProgressCallback != nil {
		config.ProgressCallback.OnStart(len(pages))
		defer config.ProgressCallback.OnComplete()
	}

	start := time.Now()
	jobs := make(chan pageJob, len(pages))
	results := make(chan pageResult, len(pages))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go p.worker(ctx, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, pg := range pages {
			select {
			case jobs <- pageJob{index: i, page: pg}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	errs := make([]error, len(pages))
	processed := 0
	for r := range results {
		errs[r.index] = r.err
		processed++
		if config.ProgressCallback != nil {
			if r.err != nil {
				config.ProgressCallback.OnError(processed, r.err)
			}
			config.ProgressCallback.OnProgress(processed, len(pages))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var firstError error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if firstError == nil {
			firstError = fmt.Errorf("page %d (%s): %w", i, pages[i].FileID, err)
		}
		if config.ErrorHandler != nil {
			config.ErrorHandler(i, pages[i], err)
		}
	}

	stats := calculateParallelStats(errs, time.Since(start), workers)
	return stats, firstError
}

func (p *Pipeline) worker(ctx context.Context, jobs <-chan pageJob, results chan<- pageResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			err := p.ProcessPage(ctx, job.page)
			select {
			case results <- pageResult{index: job.index, err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func calculateParallelStats(errs []error, duration time.Duration, workerCount int) *ParallelStats {
	stats := &ParallelStats{
		TotalPages:    len(errs),
		WorkerCount:   workerCount,
		TotalDuration: duration,
		Errors:        errs,
	}
	for _, err := range errs {
		if err != nil {
			stats.FailedPages++
		} else {
			stats.ProcessedPages++
		}
	}
	if stats.ProcessedPages > 0 {
		stats.AveragePerPage = duration / time.Duration(stats.ProcessedPages)
		if s := duration.Seconds(); s > 0 {
			stats.ThroughputPerSec = float64(stats.ProcessedPages) / s
		}
	}
	return stats
}
