package repository

import (
	"time"

	"gorm.io/gorm"

	"product-import-service/internal/models"
)

type ImportJobsRepository struct {
	db *gorm.DB
}

func NewImportJobsRepository(db *gorm.DB) *ImportJobsRepository {
	return &ImportJobsRepository{db: db}
}

// CreateJob persists a new queued import job
func (r *ImportJobsRepository) CreateJob(job *models.ImportJob) error {
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	if job.Status == "" {
		job.Status = models.ImportStatusQueued
	}
	return r.db.Create(job).Error
}

// GetJobByID retrieves a job by its external job ID
func (r *ImportJobsRepository) GetJobByID(jobID string) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := r.db.Where("job_id = ?", jobID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobs retrieves jobs newest-first with pagination
func (r *ImportJobsRepository) GetJobs(page, limit int) ([]models.ImportJob, int64, error) {
	var jobs []models.ImportJob
	var total int64

	query := r.db.Model(&models.ImportJob{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// MarkProcessing moves a job into the processing state and clears any
// progress left over from a previous attempt. The processed counter starts
// at 0 rather than null so pollers see progress as soon as work begins.
func (r *ImportJobsRepository) MarkProcessing(jobID string) error {
	return r.db.Model(&models.ImportJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":         models.ImportStatusProcessing,
			"total_rows":     nil,
			"processed_rows": 0,
			"error_message":  nil,
			"updated_at":     time.Now(),
		}).Error
}

// SetTotalRows records the data row count once the header has been read
func (r *ImportJobsRepository) SetTotalRows(jobID string, total int) error {
	return r.db.Model(&models.ImportJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"total_rows":     total,
			"processed_rows": 0,
			"updated_at":     time.Now(),
		}).Error
}

// IncrementProcessed adds the committed batch size to the progress counter.
// The addition happens in the database so concurrent readers never see a
// stale read-modify-write value.
func (r *ImportJobsRepository) IncrementProcessed(jobID string, n int) error {
	return r.db.Model(&models.ImportJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"processed_rows": gorm.Expr("COALESCE(processed_rows, 0) + ?", n),
			"updated_at":     time.Now(),
		}).Error
}

// MarkCompleted moves a job into the completed state
func (r *ImportJobsRepository) MarkCompleted(jobID string) error {
	return r.db.Model(&models.ImportJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        models.ImportStatusCompleted,
			"error_message": nil,
			"updated_at":    time.Now(),
		}).Error
}

// MarkFailed moves a job into the failed state with an error message.
// Progress counters are left as they were; batches that committed before
// the failure stay counted.
func (r *ImportJobsRepository) MarkFailed(jobID string, message string) error {
	return r.db.Model(&models.ImportJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        models.ImportStatusFailed,
			"error_message": message,
			"updated_at":    time.Now(),
		}).Error
}
