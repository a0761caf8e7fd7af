package document

import (
	"context"
	"sync"

	"3tcapital/ms_service_documents/internal/core/document"
)

// BatchJob is one document to generate by id.
type BatchJob struct {
	Kind  document.Kind
	ID    string
	Index int
}

// BatchResult is the outcome of a BatchJob.
type BatchResult struct {
	Job    BatchJob
	Result *Result
	Err    error
}

// Generator is the part of Service a worker needs.
type Generator interface {
	GenerateByID(ctx context.Context, kind document.Kind, id string) (*Result, error)
}

// BatchWorkerPool generates several documents concurrently. Every job is an
// independent pipeline call.
type BatchWorkerPool struct {
	workerCount int
	generator   Generator
	jobChan     chan BatchJob
	resultChan  chan BatchResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewBatchWorkerPool creates a pool. workerCount below 1 defaults to 4.
func NewBatchWorkerPool(ctx context.Context, workerCount int, generator Generator) *BatchWorkerPool {
	if workerCount < 1 {
		workerCount = 4
	}
	poolCtx, cancel := context.WithCancel(ctx)

	return &BatchWorkerPool{
		workerCount: workerCount,
		generator:   generator,
		jobChan:     make(chan BatchJob, workerCount*2),
		resultChan:  make(chan BatchResult, workerCount*2),
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

// Start launches the workers.
func (p *BatchWorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop waits for in-flight jobs and closes the results channel.
func (p *BatchWorkerPool) Stop() {
	close(p.jobChan)
	p.wg.Wait()
	p.cancel()
	close(p.resultChan)
}

// Submit queues a job, blocking while the queue is full.
func (p *BatchWorkerPool) Submit(job BatchJob) error {
	select {
	case p.jobChan <- job:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Results returns the channel for receiving results.
func (p *BatchWorkerPool) Results() <-chan BatchResult {
	return p.resultChan
}

func (p *BatchWorkerPool) worker() {
	defer p.wg.Done()

	for job := range p.jobChan {
		res, err := p.generator.GenerateByID(p.ctx, job.Kind, job.ID)
		result := BatchResult{Job: job, Result: res, Err: err}

		select {
		case p.resultChan <- result:
		case <-p.ctx.Done():
			return
		}
	}
}

// GenerateAll runs every id through the pool and returns the results in
// submission order. Jobs never submitted because ctx ended carry ctx's error.
func (p *BatchWorkerPool) GenerateAll(kind document.Kind, ids []string) []BatchResult {
	results := make([]BatchResult, len(ids))
	for i, id := range ids {
		results[i] = BatchResult{Job: BatchJob{Kind: kind, ID: id, Index: i}}
	}

	p.Start()

	go func() {
		defer p.Stop()
		for i := range ids {
			if err := p.Submit(results[i].Job); err != nil {
				return
			}
		}
	}()

	received := make([]bool, len(ids))
	for r := range p.Results() {
		results[r.Job.Index] = r
		received[r.Job.Index] = true
	}

	for i := range results {
		if !received[i] {
			err := p.ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i].Err = err
		}
	}
	return results
}
