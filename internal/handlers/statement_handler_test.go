package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Validation rejects the request before the ingestion service is touched,
	// so the handler can run without any backing stores here.
	h := NewStatementHandler(nil, nil, nil, nil)
	r.POST("/api/statements/upload", h.Upload)
	return r
}

func multipartUpload(t *testing.T, filename, companyID string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if companyID != "" {
		require.NoError(t, w.WriteField("company_id", companyID))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/statements/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadRequiresCompanyID(t *testing.T) {
	r := uploadRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "kivonat.pdf", "", []byte("data")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "company_id")
}

func TestUploadRequiresFile(t *testing.T) {
	r := uploadRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "", uuid.New().String(), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file required")
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	r := uploadRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "kivonat.docx", uuid.New().String(), []byte("data")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type")
}

func TestUploadRejectsInvalidTransactionIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTransactionHandler(nil)
	r.POST("/api/transactions/:id/match", h.ManualMatch)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/not-a-uuid/match", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
