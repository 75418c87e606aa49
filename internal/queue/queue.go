package queue

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	importQueueKey      = "import_jobs:queued"
	importProcessingKey = "import_jobs:processing"
)

// Runner executes one import job by its external identifier.
type Runner interface {
	Run(ctx context.Context, jobID string) error
}

// Queue hands import job IDs from the upload handler to a worker.
type Queue interface {
	Enqueue(ctx context.Context, jobID string) error
	Start()
	Stop()
}

// RedisQueue is a Redis-list backed job queue. Enqueue pushes the job ID
// onto the queued list; workers block-pop IDs into a processing list so an
// ID is never lost between pop and run, and remove them when the run
// returns. Job outcome lives in the database, so a failed run is not
// retried here.
type RedisQueue struct {
	client  *redis.Client
	runner  Runner
	workers int
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	log     *logrus.Logger
}

func NewRedisQueue(client *redis.Client, runner Runner, workers int, log *logrus.Logger) *RedisQueue {
	if workers <= 0 {
		workers = 2
	}
	return &RedisQueue{
		client:  client,
		runner:  runner,
		workers: workers,
		stopCh:  make(chan struct{}),
		log:     log,
	}
}

// Enqueue pushes a job ID onto the queued list
func (q *RedisQueue) Enqueue(ctx context.Context, jobID string) error {
	if err := q.client.LPush(ctx, importQueueKey, jobID).Err(); err != nil {
		return err
	}
	q.log.WithField("job_id", jobID).Info("Enqueued import job")
	return nil
}

// Start launches the worker goroutines
func (q *RedisQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true

	q.log.WithField("workers", q.workers).Info("Starting import workers")
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop signals the workers and waits for in-flight jobs to finish
func (q *RedisQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}
	q.running = false

	close(q.stopCh)
	q.wg.Wait()
	q.log.Info("Import workers stopped")
}

func (q *RedisQueue) worker(id int) {
	defer q.wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		jobID, err := q.client.BRPopLPush(ctx, importQueueKey, importProcessingKey, time.Second).Result()
		if err != nil {
			if err != redis.Nil {
				q.log.WithError(err).WithField("worker", id).Error("Failed to dequeue import job")
				time.Sleep(time.Second)
			}
			continue
		}

		q.log.WithFields(logrus.Fields{
			"worker": id,
			"job_id": jobID,
		}).Info("Worker picked up import job")

		if err := q.runner.Run(ctx, jobID); err != nil {
			// The job record already carries the failure; nothing to retry.
			q.log.WithError(err).WithField("job_id", jobID).Error("Import job run failed")
		}

		if err := q.client.LRem(ctx, importProcessingKey, 1, jobID).Err(); err != nil {
			q.log.WithError(err).WithField("job_id", jobID).Error("Failed to clear processing entry")
		}
	}
}

// InlineQueue runs each job on its own goroutine without a broker. Used in
// development and tests where Redis is not available; upload requests still
// return before the import finishes.
type InlineQueue struct {
	runner Runner
	log    *logrus.Logger
	wg     sync.WaitGroup
}

func NewInlineQueue(runner Runner, log *logrus.Logger) *InlineQueue {
	return &InlineQueue{runner: runner, log: log}
}

func (q *InlineQueue) Enqueue(ctx context.Context, jobID string) error {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.runner.Run(context.Background(), jobID); err != nil {
			q.log.WithError(err).WithField("job_id", jobID).Error("Import job run failed")
		}
	}()
	return nil
}

func (q *InlineQueue) Start() {}

// Stop waits for in-flight jobs to finish
func (q *InlineQueue) Stop() {
	q.wg.Wait()
}
