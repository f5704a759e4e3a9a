package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ScanJob is one unit of background pipeline work.
type ScanJob struct {
	ScanID string
	URL    string

	done chan struct{}
}

// JobHandle lets a submitter (and tests) observe completion of a background
// scan instead of firing truly unobservable work.
type JobHandle struct {
	ScanID string
	done   <-chan struct{}
}

// Done is closed when the pipeline has driven the scan to a terminal state.
func (h *JobHandle) Done() <-chan struct{} { return h.done }

// Dispatcher routes scan jobs to a fixed set of workers using consistent
// hashing on the scan id, so repeated submissions for the same scan are
// processed in order on one worker while distinct scans run concurrently.
type Dispatcher struct {
	workers  []chan *ScanJob
	pipeline ports.Pipeline
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, pipeline ports.Pipeline, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan *ScanJob, numWorkers),
		pipeline: pipeline,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *ScanJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Submit enqueues a scan for background processing and returns a handle whose
// Done channel closes once the scan reaches a terminal state. The call is
// non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Submit(scanID, url string) *JobHandle {
	job := &ScanJob{ScanID: scanID, URL: url, done: make(chan struct{})}
	d.workers[d.shardIndex(scanID)] <- job
	return &JobHandle{ScanID: scanID, done: job.done}
}

// shardIndex maps a scan id deterministically to a worker index.
func (d *Dispatcher) shardIndex(scanID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(scanID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *ScanJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			d.log.Info().
				Str("scan_id", job.ScanID).
				Int("worker_id", id).
				Msg("scan picked up")
			d.pipeline.Process(ctx, job.ScanID, job.URL)
			close(job.done)
		}
	}
}
