package exporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vfg2006/metrics-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
)

type Exporter interface {
	Stream(ctx context.Context, w io.Writer, filter domain.MetricFilter, includeCost bool) error
	Filename(dateFrom, dateTo string, now time.Time) string
}

// Readier garante schema e bootstrap do banco antes de qualquer leitura. A
// exportação passa pelo mesmo caminho de inicialização das consultas
// paginadas: numa instalação nova a primeira requisição pode ser um export.
type Readier interface {
	EnsureReady(ctx context.Context) error
}

type Service struct {
	repo    repository.MetricRepository
	readier Readier
}

func NewService(repo repository.MetricRepository, readier Readier) *Service {
	return &Service{
		repo:    repo,
		readier: readier,
	}
}

// Stream escreve o conjunto filtrado inteiro como CSV em w, linha a linha,
// sem materializar o resultado em memória. A projeção segue includeCost: sem
// permissão de custo a coluna cost_micros não aparece nem no cabeçalho.
func (s *Service) Stream(ctx context.Context, w io.Writer, filter domain.MetricFilter, includeCost bool) error {
	if err := s.readier.EnsureReady(ctx); err != nil {
		return err
	}

	filter.Normalize()

	writer := csv.NewWriter(w)

	if err := writer.Write(domain.MetricColumns(includeCost)); err != nil {
		return fmt.Errorf("erro ao escrever cabeçalho do CSV: %w", err)
	}

	flusher, _ := w.(http.Flusher)

	err := s.repo.StreamExport(ctx, filter, includeCost, func(record []string) error {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("erro ao escrever linha do CSV: %w", err)
		}

		writer.Flush()
		if err := writer.Error(); err != nil {
			return err
		}

		if flusher != nil {
			flusher.Flush()
		}

		return nil
	})
	if err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// Filename monta o nome do arquivo exportado a partir do intervalo filtrado,
// com "all" para extremos ausentes e timestamp de geração.
func (s *Service) Filename(dateFrom, dateTo string, now time.Time) string {
	if dateFrom == "" {
		dateFrom = "all"
	}
	if dateTo == "" {
		dateTo = "all"
	}

	return fmt.Sprintf("metrics_export_%s_%s_%s.csv", dateFrom, dateTo, now.Format("20060102-150405"))
}
