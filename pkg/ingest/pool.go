package ingest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 64
	defaultJobTimeout        = 5 * time.Minute
)

// DocumentIngester is the work performed for each queued document.
type DocumentIngester interface {
	IngestDocument(ctx context.Context, doc Document) (*Result, error)
}

// Job is a document waiting to be ingested.
type Job struct {
	Document Document
}

// PoolConfig is the configuration for the ingestion pool.
type PoolConfig struct {
	Ingester DocumentIngester

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel.
	QueueSize uint

	// JobTimeout bounds a single ingestion.
	JobTimeout time.Duration

	// OnDone, when set, is called after every job.
	OnDone func(doc Document, res *Result, err error)

	Logger *zap.Logger
}

// Pool ingests documents asynchronously so HTTP handlers and file watchers
// return before embedding completes.
type Pool struct {
	config *PoolConfig
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a Pool and starts its workers.
func NewPool(c *PoolConfig) (*Pool, error) {
	if c.Ingester == nil {
		return nil, fmt.Errorf("ingest pool requires an ingester")
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	p := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}
	return p, nil
}

// Enqueue submits a job. It returns false, dropping the job, when the queue
// is full.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("ingest job queued", zap.String("document_id", job.Document.ID))
		return true
	default:
		p.logger.Error("ingest job not queued, queue full, job dropped",
			zap.String("document_id", job.Document.ID),
		)
		return false
	}
}

// Close stops accepting jobs and waits for queued jobs to finish.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("ingest worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.process(job)
	}

	p.logger.Debug("ingest worker stopped", zap.Uint("worker_id", id))
}

func (p *Pool) process(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	res, err := p.config.Ingester.IngestDocument(ctx, job.Document)
	if err != nil {
		p.logger.Error("async ingestion failed",
			zap.String("document_id", job.Document.ID),
			zap.Error(err),
		)
	}
	if p.config.OnDone != nil {
		p.config.OnDone(job.Document, res, err)
	}
}
