package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"product-import-service/internal/models"
	"product-import-service/internal/repository"
)

type JobsHandler struct {
	repo *repository.ImportJobsRepository
}

func NewJobsHandler(repo *repository.ImportJobsRepository) *JobsHandler {
	return &JobsHandler{repo: repo}
}

// GetJob returns one import job for status polling
// GET /api/v1/jobs/:jobId
func (h *JobsHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := h.repo.GetJobByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobs returns jobs newest-first
// GET /api/v1/jobs
func (h *JobsHandler) ListJobs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > maxPerPage {
		limit = maxPerPage
	}

	jobs, total, err := h.repo.GetJobs(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, models.JobListResponse{
		Items: jobs,
		Total: total,
		Page:  page,
		Pages: pageCount(total, limit),
	})
}
