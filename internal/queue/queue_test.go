package queue

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	mu   sync.Mutex
	runs []string
}

func (r *stubRunner) Run(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, jobID)
	return nil
}

func TestInlineQueueRunsJobs(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.PanicLevel)

	runner := &stubRunner{}
	q := NewInlineQueue(runner, logger)
	q.Start()

	require.NoError(t, q.Enqueue(context.Background(), "job-1"))
	require.NoError(t, q.Enqueue(context.Background(), "job-2"))

	// Stop waits for the in-flight goroutines.
	q.Stop()

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.ElementsMatch(t, []string{"job-1", "job-2"}, runner.runs)
}
