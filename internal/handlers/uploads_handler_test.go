package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"product-import-service/internal/models"
	"product-import-service/internal/repository"
)

type stubQueue struct {
	enqueued []string
}

func (q *stubQueue) Enqueue(ctx context.Context, jobID string) error {
	q.enqueued = append(q.enqueued, jobID)
	return nil
}

func (q *stubQueue) Start() {}
func (q *stubQueue) Stop()  {}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.ImportJob{}, &models.Webhook{}))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.PanicLevel)
	return l
}

func setupUploadRouter(t *testing.T) (*gin.Engine, *repository.ImportJobsRepository, *stubQueue) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	jobsRepo := repository.NewImportJobsRepository(db)
	q := &stubQueue{}
	h := NewUploadsHandler(jobsRepo, q, t.TempDir(), quietLogger())
	jobsHandler := NewJobsHandler(jobsRepo)

	router := gin.New()
	router.POST("/api/v1/uploads", h.UploadCSV)
	router.GET("/api/v1/uploads/template", h.DownloadTemplate)
	router.GET("/api/v1/jobs/:jobId", jobsHandler.GetJob)
	return router, jobsRepo, q
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestUploadCSVAccepted(t *testing.T) {
	router, jobsRepo, q := setupUploadRouter(t)

	body, contentType := multipartUpload(t, "products.csv", "sku,name\nA1,First\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.JobID)

	job, err := jobsRepo.GetJobByID(resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusQueued, job.Status)
	assert.Equal(t, "products.csv", job.Filename)
	assert.FileExists(t, job.FilePath)

	assert.Equal(t, []string{resp.JobID}, q.enqueued)
}

func TestUploadRejectsNonCSV(t *testing.T) {
	router, _, q := setupUploadRouter(t)

	body, contentType := multipartUpload(t, "products.xlsx", "not a csv")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, q.enqueued)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	router, _, _ := setupUploadRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJobStatusPolling(t *testing.T) {
	router, jobsRepo, _ := setupUploadRouter(t)

	job := &models.ImportJob{JobID: "poll-me", Filename: "f.csv", FilePath: "/tmp/f.csv"}
	require.NoError(t, jobsRepo.CreateJob(job))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/poll-me", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var loaded models.ImportJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Equal(t, "poll-me", loaded.JobID)
	assert.Equal(t, models.ImportStatusQueued, loaded.Status)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadTemplate(t *testing.T) {
	router, _, _ := setupUploadRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/template", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sku,name,description,price,is_active")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "products.csv", sanitizeFilename("products.csv"))
	assert.Equal(t, "my_data.csv", sanitizeFilename("my data.csv"))
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "", sanitizeFilename("   "))
}
