package exporting

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/database/sqlite"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/importing"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/querying"
	"go.uber.org/mock/gomock"
)

// readyReadier registra se o bootstrap foi acionado antes do streaming.
type readyReadier struct {
	called bool
}

func (r *readyReadier) EnsureReady(context.Context) error {
	r.called = true
	return nil
}

func TestService_Stream_ComCusto(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMetricRepository(ctrl)
	repo.EXPECT().
		StreamExport(gomock.Any(), gomock.Any(), true, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.MetricFilter, _ bool, yield func([]string) error) error {
			if err := yield([]string{"acc-1", "camp-1", "400000", "10", "1", "100", "12", "2024-01-01"}); err != nil {
				return err
			}
			return yield([]string{"acc-2", "camp-2", "", "5", "", "50", "6", "2024-01-02"})
		})

	readier := &readyReadier{}
	service := NewService(repo, readier)

	var buf bytes.Buffer
	err := service.Stream(context.Background(), &buf, domain.MetricFilter{}, true)
	require.NoError(t, err)
	assert.True(t, readier.called)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "account_id,campaign_id,cost_micros,clicks,conversions,impressions,interactions,date", lines[0])
	assert.Equal(t, "acc-1,camp-1,400000,10,1,100,12,2024-01-01", lines[1])
	assert.Equal(t, "acc-2,camp-2,,5,,50,6,2024-01-02", lines[2])
}

func TestService_Stream_SemCustoOmiteCabecalho(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMetricRepository(ctrl)
	repo.EXPECT().
		StreamExport(gomock.Any(), gomock.Any(), false, gomock.Any()).
		Return(nil)

	service := NewService(repo, &readyReadier{})

	var buf bytes.Buffer
	err := service.Stream(context.Background(), &buf, domain.MetricFilter{}, false)
	require.NoError(t, err)

	assert.Equal(t, "account_id,campaign_id,clicks,conversions,impressions,interactions,date\n", buf.String())
	assert.NotContains(t, buf.String(), "cost_micros")
}

func TestService_Stream_NormalizaFiltroAntesDoRepositorio(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	expected := domain.MetricFilter{
		SortBy:   "clicks",
		SortDir:  "DESC",
		Page:     1,
		PageSize: domain.DefaultPageSize,
	}

	repo := mocks.NewMockMetricRepository(ctrl)
	repo.EXPECT().StreamExport(gomock.Any(), expected, true, gomock.Any()).Return(nil)

	service := NewService(repo, &readyReadier{})

	var buf bytes.Buffer
	err := service.Stream(context.Background(), &buf, domain.MetricFilter{SortBy: "clicks", SortDir: "desc"}, true)
	require.NoError(t, err)
}

func TestService_Stream_InicializaBancoVazioComCSVOficial(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "metrics.csv")
	content := "account_id,campaign_id,cost_micros,clicks,conversions,impressions,interactions,date\n" +
		"acc-1,camp-1,400000,10,1,100,12,2024-01-01\n" +
		"acc-2,camp-2,600000,5,2,50,6,2024-01-02\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o600))

	cfg := &config.Config{
		Data: config.Data{
			Dir:          dir,
			DatabasePath: filepath.Join(dir, "metrics.db"),
			MetricsCSV:   csvPath,
		},
	}

	conn, err := sqlite.NewConnection(context.Background(), cfg.Data)
	require.NoError(t, err)
	defer conn.Close()

	repo := repository.NewMetricRepository(conn)
	importer := importing.NewService(repo, importing.NewTracker(0), cfg)

	// A primeira requisição de uma instalação nova pode ser um export: o
	// schema ainda não existe e o CSV oficial ainda não foi importado.
	service := NewService(repo, querying.NewService(repo, importer, cfg))

	var buf bytes.Buffer
	require.NoError(t, service.Stream(context.Background(), &buf, domain.MetricFilter{}, true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "account_id,campaign_id,cost_micros,clicks,conversions,impressions,interactions,date", lines[0])
	assert.Contains(t, buf.String(), "acc-1,camp-1")
	assert.Contains(t, buf.String(), "acc-2,camp-2")
}

func TestService_Filename(t *testing.T) {
	service := NewService(nil, nil)
	now := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)

	assert.Equal(t,
		"metrics_export_2024-01-01_2024-01-31_20240315-103045.csv",
		service.Filename("2024-01-01", "2024-01-31", now),
	)

	assert.Equal(t,
		"metrics_export_all_all_20240315-103045.csv",
		service.Filename("", "", now),
	)
}
