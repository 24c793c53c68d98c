package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/importing"
)

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)

	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()

	body, contentType := multipartUpload(t, field, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/v1/metrics/import", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestUploadMetricsCSV_ExtensaoInvalida(t *testing.T) {
	cfg := &config.Config{Data: config.Data{Dir: t.TempDir()}}
	rec := httptest.NewRecorder()

	UploadMetricsCSV(newSignalingImporter(), cfg).ServeHTTP(rec, uploadRequest(t, "file", "metrics.txt", "account_id\n"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VAL_003")
}

func TestUploadMetricsCSV_CampoAusente(t *testing.T) {
	cfg := &config.Config{Data: config.Data{Dir: t.TempDir()}}
	rec := httptest.NewRecorder()

	UploadMetricsCSV(newSignalingImporter(), cfg).ServeHTTP(rec, uploadRequest(t, "outro", "metrics.csv", "account_id\n"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VAL_002")
}

func TestUploadMetricsCSV_FalhaAoPrepararDiretorio(t *testing.T) {
	// Um arquivo no lugar do diretório de dados faz o MkdirAll falhar
	blocker := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	cfg := &config.Config{Data: config.Data{Dir: blocker}}
	rec := httptest.NewRecorder()

	UploadMetricsCSV(newSignalingImporter(), cfg).ServeHTTP(rec, uploadRequest(t, "file", "metrics.csv", "account_id\n"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "IMP_002")
}

func TestUploadMetricsCSV_DisparaJobEPromoveCSVOficial(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Data: config.Data{
			Dir:        dir,
			MetricsCSV: filepath.Join(dir, "metrics.csv"),
		},
	}

	importer := newSignalingImporter()
	rec := httptest.NewRecorder()

	UploadMetricsCSV(importer, cfg).ServeHTTP(rec, uploadRequest(t, "file", "metrics.csv", "account_id,date\nacc-1,2024-01-01\n"))

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["job_id"])

	select {
	case <-importer.imported:
	case <-time.After(5 * time.Second):
		t.Fatal("importação em background não foi disparada")
	}

	require.Eventually(t, func() bool {
		status, ok := importer.Tracker().Get(resp["job_id"])
		return ok && status.Stage == importing.StageDone
	}, 5*time.Second, 10*time.Millisecond)

	// O upload foi promovido a CSV oficial e o temporário não restou
	content, err := os.ReadFile(cfg.Data.MetricsCSV)
	require.NoError(t, err)
	assert.Contains(t, string(content), "acc-1")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestGetImportStatus_JobDesconhecido(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/import/nope/status", nil)
	rec := httptest.NewRecorder()

	GetImportStatus(newSignalingImporter()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "IMP_003")
}
