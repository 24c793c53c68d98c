package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/database/sqlite"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
)

func newTestRepo(t *testing.T) MetricRepository {
	t.Helper()

	dir := t.TempDir()
	conn, err := sqlite.NewConnection(context.Background(), config.Data{
		Dir:          dir,
		DatabasePath: filepath.Join(dir, "metrics.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
	})

	repo := NewMetricRepository(conn)
	require.NoError(t, repo.EnsureSchema(context.Background()))

	return repo
}

func floatPtr(v float64) *float64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}

// seedRows carrega o cenário base: três linhas, duas no intervalo 2024-01-01 a
// 2024-01-02 e uma fora.
func seedRows(t *testing.T, repo MetricRepository) {
	t.Helper()

	rows := []domain.MetricRow{
		{
			AccountID:  "acc-1",
			CampaignID: "camp-1",
			CostMicros: floatPtr(400000),
			Clicks:     floatPtr(10),
			Date:       stringPtr("2024-01-01"),
		},
		{
			AccountID:  "acc-1",
			CampaignID: "camp-2",
			CostMicros: floatPtr(600000),
			Clicks:     floatPtr(5),
			Date:       stringPtr("2024-01-02"),
		},
		{
			AccountID:  "acc-2",
			CampaignID: "camp-3",
			CostMicros: floatPtr(900000),
			Clicks:     floatPtr(7),
			Date:       stringPtr("2024-02-10"),
		},
	}

	delivered := false
	written, err := repo.Replace(context.Background(), func() ([]domain.MetricRow, error) {
		if delivered {
			return nil, nil
		}
		delivered = true
		return rows, nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), written)
}

func TestMetricRepository_SumTotals(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo)

	filter := domain.MetricFilter{DateFrom: "2024-01-01", DateTo: "2024-01-02"}
	filter.Normalize()

	totals, err := repo.SumTotals(context.Background(), filter, true)
	require.NoError(t, err)

	assert.Equal(t, 15.0, totals.Clicks)
	require.NotNil(t, totals.CostMicros)
	assert.Equal(t, 1000000.0, *totals.CostMicros)
}

func TestMetricRepository_SumTotals_SemCusto(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo)

	filter := domain.MetricFilter{}
	filter.Normalize()

	totals, err := repo.SumTotals(context.Background(), filter, false)
	require.NoError(t, err)

	assert.Equal(t, 22.0, totals.Clicks)
	assert.Nil(t, totals.CostMicros)
}

func TestMetricRepository_SumTotals_ConjuntoVazio(t *testing.T) {
	repo := newTestRepo(t)

	filter := domain.MetricFilter{}
	filter.Normalize()

	totals, err := repo.SumTotals(context.Background(), filter, true)
	require.NoError(t, err)

	assert.Equal(t, 0.0, totals.Clicks)
	require.NotNil(t, totals.CostMicros)
	assert.Equal(t, 0.0, *totals.CostMicros)
}

func TestMetricRepository_QueryPage_FiltroEPaginacao(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo)

	tests := []struct {
		name          string
		filter        domain.MetricFilter
		expectedTotal int
		expectedRows  int
	}{
		{
			name:          "Intervalo de datas inclusivo",
			filter:        domain.MetricFilter{DateFrom: "2024-01-01", DateTo: "2024-01-02"},
			expectedTotal: 2,
			expectedRows:  2,
		},
		{
			name:          "Substring de account_id",
			filter:        domain.MetricFilter{AccountID: "cc-2"},
			expectedTotal: 1,
			expectedRows:  1,
		},
		{
			name:          "Substring de campaign_id",
			filter:        domain.MetricFilter{CampaignID: "camp"},
			expectedTotal: 3,
			expectedRows:  3,
		},
		{
			name:          "Paginação além do conjunto devolve página vazia",
			filter:        domain.MetricFilter{Page: 5, PageSize: 10},
			expectedTotal: 3,
			expectedRows:  0,
		},
		{
			name:          "Segunda página com page_size 2",
			filter:        domain.MetricFilter{Page: 2, PageSize: 2},
			expectedTotal: 3,
			expectedRows:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			filter.Normalize()

			rows, err := repo.QueryPage(context.Background(), filter, true)
			require.NoError(t, err)
			assert.Len(t, rows, tt.expectedRows)

			total, err := repo.CountRows(context.Background(), filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedTotal, total)
		})
	}
}

func TestMetricRepository_QueryPage_Ordenacao(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo)

	filter := domain.MetricFilter{SortBy: "clicks", SortDir: "desc"}
	filter.Normalize()

	rows, err := repo.QueryPage(context.Background(), filter, true)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 10.0, *rows[0].Clicks)
	assert.Equal(t, 7.0, *rows[1].Clicks)
	assert.Equal(t, 5.0, *rows[2].Clicks)
}

func TestMetricRepository_QueryPage_SemCustoOmiteColuna(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo)

	filter := domain.MetricFilter{}
	filter.Normalize()

	rows, err := repo.QueryPage(context.Background(), filter, false)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	for _, row := range rows {
		assert.Nil(t, row.CostMicros)
	}
}

func TestMetricRepository_Replace_SubstituiConteudoAnterior(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo)

	replacement := []domain.MetricRow{
		{AccountID: "acc-9", CampaignID: "camp-9", Clicks: floatPtr(1), Date: stringPtr("2025-05-05")},
	}

	delivered := false
	written, err := repo.Replace(context.Background(), func() ([]domain.MetricRow, error) {
		if delivered {
			return nil, nil
		}
		delivered = true
		return replacement, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), written)

	filter := domain.MetricFilter{}
	filter.Normalize()

	total, err := repo.CountRows(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestMetricRepository_Replace_ErroPreservaConteudoAnterior(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo)

	calls := 0
	_, err := repo.Replace(context.Background(), func() ([]domain.MetricRow, error) {
		calls++
		if calls == 1 {
			return []domain.MetricRow{{AccountID: "acc-x", CampaignID: "camp-x"}}, nil
		}
		return nil, assert.AnError
	})
	require.Error(t, err)

	filter := domain.MetricFilter{}
	filter.Normalize()

	total, err := repo.CountRows(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 3, total, "a transação revertida deve manter as linhas originais")
}

func TestMetricRepository_Replace_LoteMaiorQueTetoDeParametros(t *testing.T) {
	repo := newTestRepo(t)

	// 500 linhas x 8 colunas = 4000 parâmetros, bem acima do teto de 999 por
	// statement; o repositório precisa fatiar em sub-lotes.
	rows := make([]domain.MetricRow, 500)
	for i := range rows {
		rows[i] = domain.MetricRow{
			AccountID:  "acc-bulk",
			CampaignID: "camp-bulk",
			Clicks:     floatPtr(1),
			Date:       stringPtr("2024-03-01"),
		}
	}

	delivered := false
	written, err := repo.Replace(context.Background(), func() ([]domain.MetricRow, error) {
		if delivered {
			return nil, nil
		}
		delivered = true
		return rows, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), written)

	filter := domain.MetricFilter{}
	filter.Normalize()

	total, err := repo.CountRows(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 500, total)
}

func TestMetricRepository_DateBounds(t *testing.T) {
	repo := newTestRepo(t)

	bounds, err := repo.DateBounds(context.Background())
	require.NoError(t, err)
	assert.Nil(t, bounds.Min)
	assert.Nil(t, bounds.Max)

	seedRows(t, repo)

	bounds, err = repo.DateBounds(context.Background())
	require.NoError(t, err)
	require.NotNil(t, bounds.Min)
	require.NotNil(t, bounds.Max)
	assert.Equal(t, "2024-01-01", *bounds.Min)
	assert.Equal(t, "2024-02-10", *bounds.Max)
}

func TestMetricRepository_DistinctValues(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo)

	values, err := repo.DistinctValues(context.Background(), "account_id", "", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"acc-1", "acc-2"}, values)

	values, err = repo.DistinctValues(context.Background(), "campaign_id", "camp-2", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"camp-2"}, values)

	// Coluna fora da allow-list devolve lista vazia, não erro
	values, err = repo.DistinctValues(context.Background(), "clicks", "", 50)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestMetricRepository_StreamExport(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo)

	filter := domain.MetricFilter{DateFrom: "2024-01-01", DateTo: "2024-01-02"}
	filter.Normalize()

	var records [][]string
	err := repo.StreamExport(context.Background(), filter, false, func(record []string) error {
		records = append(records, record)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, records, 2)
	// Sem custo a projeção tem 7 campos: ids, 4 métricas e data
	assert.Len(t, records[0], 7)
	assert.Equal(t, "acc-1", records[0][0])
	assert.Equal(t, "2024-01-01", records[0][6])
}
