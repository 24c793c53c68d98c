package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/scheduler"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/importing"
)

// signalingImporter sinaliza por canal quando ImportFile é chamado, para
// sincronizar com a goroutine disparada pelo agendador.
type signalingImporter struct {
	tracker  *importing.Tracker
	imported chan string
}

func newSignalingImporter() *signalingImporter {
	return &signalingImporter{
		tracker:  importing.NewTracker(0),
		imported: make(chan string, 1),
	}
}

func (s *signalingImporter) ImportFile(_ context.Context, path string) (int64, error) {
	s.imported <- path
	return 0, nil
}

func (s *signalingImporter) ImportJob(_ context.Context, path, _ string) (int64, error) {
	s.imported <- path
	return 0, nil
}

func (s *signalingImporter) Tracker() *importing.Tracker {
	return s.tracker
}

func TestTriggerReimport_CSVOficialAusente(t *testing.T) {
	cfg := &config.Config{
		Data: config.Data{MetricsCSV: filepath.Join(t.TempDir(), "metrics.csv")},
	}
	service := scheduler.NewMetricsReimportService(newSignalingImporter(), cfg)

	rec := httptest.NewRecorder()
	TriggerReimport(service, cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/metrics/reimport", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "IMP_001")
}

func TestTriggerReimport_DisparaImportacao(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("account_id,date\nacc-1,2024-01-01\n"), 0o600))

	cfg := &config.Config{
		Data: config.Data{MetricsCSV: csvPath},
	}
	importer := newSignalingImporter()
	service := scheduler.NewMetricsReimportService(importer, cfg)

	rec := httptest.NewRecorder()
	TriggerReimport(service, cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/metrics/reimport", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "started")

	select {
	case path := <-importer.imported:
		assert.Equal(t, csvPath, path)
	case <-time.After(5 * time.Second):
		t.Fatal("reimportação não foi disparada")
	}
}

func TestGetReimportStatus(t *testing.T) {
	cfg := &config.Config{
		Data:       config.Data{MetricsCSV: "/srv/data/metrics.csv"},
		ImportSync: config.ImportSync{Enabled: true, CronSchedule: "0 3 * * *"},
	}
	service := scheduler.NewMetricsReimportService(newSignalingImporter(), cfg)

	rec := httptest.NewRecorder()
	GetReimportStatus(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/metrics/reimport/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, true, status["sync_enabled"])
	assert.Equal(t, "0 3 * * *", status["sync_cron"])
	assert.Equal(t, "/srv/data/metrics.csv", status["source_path"])
}
