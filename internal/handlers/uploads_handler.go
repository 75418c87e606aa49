package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"product-import-service/internal/models"
	"product-import-service/internal/queue"
	"product-import-service/internal/repository"
)

type UploadsHandler struct {
	jobs      *repository.ImportJobsRepository
	queue     queue.Queue
	uploadDir string
	log       *logrus.Logger
}

func NewUploadsHandler(jobs *repository.ImportJobsRepository, q queue.Queue, uploadDir string, log *logrus.Logger) *UploadsHandler {
	return &UploadsHandler{
		jobs:      jobs,
		queue:     q,
		uploadDir: uploadDir,
		log:       log,
	}
}

// UploadCSV accepts a CSV file, records a queued import job, and hands the
// job ID to the queue. The import itself runs later; the response only
// acknowledges the job.
// POST /api/v1/uploads
func (h *UploadsHandler) UploadCSV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No file provided"})
		return
	}

	filename := sanitizeFilename(file.Filename)
	if filename == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No selected file"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Only CSV files are supported"})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to store upload"})
		return
	}

	jobID := uuid.New().String()
	filePath := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", jobID, filename))
	if err := c.SaveUploadedFile(file, filePath); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to store upload"})
		return
	}

	job := models.ImportJob{
		JobID:    jobID,
		Filename: filename,
		FilePath: filePath,
		Status:   models.ImportStatusQueued,
	}
	if err := h.jobs.CreateJob(&job); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.queue.Enqueue(c.Request.Context(), jobID); err != nil {
		h.log.WithError(err).WithField("job_id", jobID).Error("Failed to enqueue import job")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to enqueue import job"})
		return
	}

	h.log.WithFields(logrus.Fields{
		"job_id":   jobID,
		"filename": filename,
	}).Info("Accepted CSV upload")
	c.JSON(http.StatusAccepted, models.UploadResponse{JobID: jobID})
}

// DownloadTemplate returns a CSV template with the recognized columns and
// one example row.
// GET /api/v1/uploads/template
func (h *UploadsHandler) DownloadTemplate(c *gin.Context) {
	columns := models.ProductImportColumns()

	headers := make([]string, len(columns))
	example := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
		example[i] = col.Example
	}

	body := strings.Join(headers, ",") + "\n" + strings.Join(example, ",") + "\n"
	c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")
	c.Data(http.StatusOK, "text/csv", []byte(body))
}

// sanitizeFilename strips path components and characters that are unsafe in
// a filename built from user input.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, string(filepath.Separator), "")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	trimmed := strings.Trim(b.String(), ".")
	if trimmed == "" || trimmed == "." {
		return ""
	}
	return trimmed
}
