package querying

import (
	"context"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
	"github.com/vfg2006/metrics-dashboard-api/pkg/utils"
)

// maxDistinctValues limita as listas de autocomplete; também é o padrão
// quando o cliente não informa um limite.
const maxDistinctValues = 100

// Importer é o recorte mínimo da importação usado no bootstrap sob demanda.
type Importer interface {
	ImportFile(ctx context.Context, path string) (int64, error)
}

type Querier interface {
	EnsureReady(ctx context.Context) error
	QueryPage(ctx context.Context, filter domain.MetricFilter, includeCost bool) (*domain.MetricPage, error)
	ComparePeriods(ctx context.Context, periodA, periodB domain.Period, includeCost bool) (*domain.PeriodComparison, error)
	DateBounds(ctx context.Context) (domain.DateBounds, error)
	DistinctValues(ctx context.Context, column, query string, limit int) ([]string, error)
}

type Service struct {
	repo     repository.MetricRepository
	importer Importer
	cfg      *config.Config

	bootstrapMu sync.Mutex
	ready       bool
}

func NewService(repo repository.MetricRepository, importer Importer, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		importer: importer,
		cfg:      cfg,
	}
}

// EnsureReady garante o schema e, na primeira leitura com a tabela vazia,
// importa o CSV oficial se ele existir. Idempotente; o mutex serializa o
// bootstrap entre requisições concorrentes.
func (s *Service) EnsureReady(ctx context.Context) error {
	s.bootstrapMu.Lock()
	defer s.bootstrapMu.Unlock()

	if s.ready {
		return nil
	}

	if err := s.repo.EnsureSchema(ctx); err != nil {
		return err
	}

	count, err := s.repo.CountRows(ctx, domain.MetricFilter{})
	if err != nil {
		return err
	}

	if count == 0 {
		if _, err := os.Stat(s.cfg.Data.MetricsCSV); err == nil {
			logrus.WithField("path", s.cfg.Data.MetricsCSV).Info("Banco vazio; importando CSV oficial")

			if _, err := s.importer.ImportFile(ctx, s.cfg.Data.MetricsCSV); err != nil {
				return err
			}
		}
	}

	s.ready = true
	return nil
}

// QueryPage devolve a página pedida junto com o total e os somatórios do
// conjunto filtrado inteiro, calculados sobre o mesmo predicado.
func (s *Service) QueryPage(ctx context.Context, filter domain.MetricFilter, includeCost bool) (*domain.MetricPage, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	filter.Normalize()

	rows, err := s.repo.QueryPage(ctx, filter, includeCost)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.SumTotals(ctx, filter, includeCost)
	if err != nil {
		return nil, err
	}

	return &domain.MetricPage{
		Rows:     rows,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
		Totals:   totals,
	}, nil
}

// ComparePeriods calcula os totais de dois períodos independentes e as
// diferenças absoluta e percentual por métrica. diff_pct é nulo quando o
// total do período A é zero.
func (s *Service) ComparePeriods(ctx context.Context, periodA, periodB domain.Period, includeCost bool) (*domain.PeriodComparison, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	totalsA, err := s.repo.SumTotals(ctx, periodFilter(periodA), includeCost)
	if err != nil {
		return nil, err
	}

	totalsB, err := s.repo.SumTotals(ctx, periodFilter(periodB), includeCost)
	if err != nil {
		return nil, err
	}

	mapA := totalsA.AsMap()
	mapB := totalsB.AsMap()

	diffAbs := make(map[string]float64, len(mapA))
	diffPct := make(map[string]*float64, len(mapA))

	for name, valueA := range mapA {
		valueB := mapB[name]
		diffAbs[name] = valueB - valueA

		if valueA != 0 {
			pct := utils.RoundWithTwoDecimalPlace((valueB - valueA) / valueA * 100)
			diffPct[name] = &pct
		} else {
			diffPct[name] = nil
		}
	}

	return &domain.PeriodComparison{
		PeriodA: totalsA,
		PeriodB: totalsB,
		DiffAbs: diffAbs,
		DiffPct: diffPct,
	}, nil
}

// DateBounds devolve as datas mínima e máxima da tabela inteira.
func (s *Service) DateBounds(ctx context.Context) (domain.DateBounds, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return domain.DateBounds{}, err
	}

	return s.repo.DateBounds(ctx)
}

// DistinctValues devolve os valores distintos de uma dimensão de facet para
// autocomplete, com filtro de substring opcional.
func (s *Service) DistinctValues(ctx context.Context, column, query string, limit int) ([]string, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	if limit < 1 {
		limit = maxDistinctValues
	}
	if limit > maxDistinctValues {
		limit = maxDistinctValues
	}

	return s.repo.DistinctValues(ctx, column, query, limit)
}

func periodFilter(period domain.Period) domain.MetricFilter {
	filter := domain.MetricFilter{
		DateFrom: period.DateFrom,
		DateTo:   period.DateTo,
	}
	filter.Normalize()
	return filter
}
