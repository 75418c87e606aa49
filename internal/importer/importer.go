package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"product-import-service/internal/models"
)

const batchSize = 1000

// ErrFileNotFound is recorded on the job when the uploaded file vanished
// before the worker picked the job up.
var ErrFileNotFound = errors.New("source file not found")

// JobStore is the slice of job persistence the importer needs.
type JobStore interface {
	GetJobByID(jobID string) (*models.ImportJob, error)
	MarkProcessing(jobID string) error
	SetTotalRows(jobID string, total int) error
	IncrementProcessed(jobID string, n int) error
	MarkCompleted(jobID string) error
	MarkFailed(jobID string, message string) error
}

// ProductStore persists transformed batches.
type ProductStore interface {
	UpsertBatch(products []models.Product) error
}

// Notifier fans an event out to subscribers. Implementations must be
// best-effort: delivery failures are theirs to absorb, never to return.
type Notifier interface {
	Dispatch(ctx context.Context, eventType string, payload models.EventPayload)
}

// Importer drives a single import job from queued to a terminal state.
type Importer struct {
	jobs     JobStore
	products ProductStore
	notifier Notifier
	log      *logrus.Logger
}

func NewImporter(jobs JobStore, products ProductStore, notifier Notifier, log *logrus.Logger) *Importer {
	return &Importer{
		jobs:     jobs,
		products: products,
		notifier: notifier,
		log:      log,
	}
}

// Run processes one import job end to end. An unknown job ID is a no-op:
// the job may have been deleted or handled already, and the queue should
// not treat that as a failure. A job already in a terminal state is
// likewise skipped, so a duplicate enqueue never re-runs a finished
// import. Once the job is marked processing, any transform or store error
// marks it failed, emits the failure event, and is returned so the caller
// can fail the underlying task too.
func (i *Importer) Run(ctx context.Context, jobID string) error {
	job, err := i.jobs.GetJobByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			i.log.WithField("job_id", jobID).Warn("Import job not found, skipping")
			return nil
		}
		return fmt.Errorf("failed to load import job: %w", err)
	}

	if job.Status.Terminal() {
		i.log.WithFields(logrus.Fields{
			"job_id": job.JobID,
			"status": job.Status,
		}).Warn("Import job already finished, skipping")
		return nil
	}

	if err := i.jobs.MarkProcessing(job.JobID); err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	if _, err := os.Stat(job.FilePath); err != nil {
		// The upload is gone before any row was touched. The job is failed
		// without emitting started or failed events; there is nothing a
		// subscriber could act on.
		i.log.WithFields(logrus.Fields{
			"job_id": job.JobID,
			"path":   job.FilePath,
		}).Error("Import source file missing")
		if uerr := i.jobs.MarkFailed(job.JobID, ErrFileNotFound.Error()); uerr != nil {
			return fmt.Errorf("failed to mark job failed: %w", uerr)
		}
		return nil
	}

	i.notifier.Dispatch(ctx, models.EventImportStarted, models.EventPayload{
		JobID:    job.JobID,
		Filename: job.Filename,
	})

	if err := i.process(ctx, job); err != nil {
		i.log.WithFields(logrus.Fields{
			"job_id": job.JobID,
			"error":  err.Error(),
		}).Error("Import job failed")
		if uerr := i.jobs.MarkFailed(job.JobID, err.Error()); uerr != nil {
			i.log.WithField("job_id", job.JobID).WithError(uerr).Error("Failed to persist failed status")
		}
		i.notifier.Dispatch(ctx, models.EventImportFailed, models.EventPayload{
			JobID:    job.JobID,
			Filename: job.Filename,
			Error:    err.Error(),
		})
		return err
	}

	if err := i.jobs.MarkCompleted(job.JobID); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	i.notifier.Dispatch(ctx, models.EventImportCompleted, models.EventPayload{
		JobID:    job.JobID,
		Filename: job.Filename,
	})
	i.log.WithField("job_id", job.JobID).Info("Import job completed")
	return nil
}

// process counts rows, then streams the file through the transformer in
// batches. Each batch commits before the progress counter advances, so the
// counter can trail a partially written batch but never lead it.
func (i *Importer) process(ctx context.Context, job *models.ImportJob) error {
	total, err := countDataRows(job.FilePath)
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}
	if err := i.jobs.SetTotalRows(job.JobID, total); err != nil {
		return fmt.Errorf("failed to set total rows: %w", err)
	}

	file, err := os.Open(job.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to read header: %w", err)
	}
	for idx, h := range headers {
		headers[idx] = strings.ToLower(strings.TrimSpace(h))
	}

	batch := make([]models.Product, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := i.products.UpsertBatch(batch); err != nil {
			return fmt.Errorf("failed to upsert batch: %w", err)
		}
		if err := i.jobs.IncrementProcessed(job.JobID, len(batch)); err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read row: %w", err)
		}

		row := make(map[string]string, len(headers))
		for idx, h := range headers {
			if idx < len(record) {
				row[h] = record[idx]
			}
		}

		product, err := TransformRow(row)
		if err != nil {
			return err
		}
		batch = append(batch, product)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// countDataRows returns the line count of the file minus the header line.
func countDataRows(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	lines := 0
	reader := bufio.NewReader(file)
	for {
		chunk, err := reader.ReadString('\n')
		if len(chunk) > 0 {
			lines++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}
