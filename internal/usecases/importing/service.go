package importing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
	"github.com/vfg2006/metrics-dashboard-api/pkg/utils"
)

// ErrCSVNotFound indica que o caminho de origem não existe. Fatal para a
// importação; o conteúdo anterior do banco permanece intacto (a troca inteira
// acontece numa única transação).
var ErrCSVNotFound = errors.New("arquivo CSV não encontrado")

// numericColumns são as colunas coagidas para número-ou-NULL na importação.
var numericColumns = []string{"cost_micros", "clicks", "conversions", "impressions", "interactions"}

type Importer interface {
	ImportFile(ctx context.Context, path string) (int64, error)
	ImportJob(ctx context.Context, path, jobID string) (int64, error)
	Tracker() *Tracker
}

type Service struct {
	repo          repository.MetricRepository
	tracker       *Tracker
	readBatchSize int
}

func NewService(repo repository.MetricRepository, tracker *Tracker, cfg *config.Config) *Service {
	readBatchSize := cfg.Import.ReadBatchSize
	if readBatchSize < 1 {
		readBatchSize = 200_000
	}

	return &Service{
		repo:          repo,
		tracker:       tracker,
		readBatchSize: readBatchSize,
	}
}

func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// ImportFile substitui todo o conteúdo da tabela metrics pelo CSV indicado e
// devolve o total de linhas LIDAS do arquivo (o contrato é contagem de
// leitura, não de escrita).
func (s *Service) ImportFile(ctx context.Context, path string) (int64, error) {
	return s.importFile(ctx, path, nil)
}

// ImportJob é a variante com acompanhamento: os marcos do progresso são
// registrados no tracker sob jobID, permitindo polling enquanto a importação
// roda fora do caminho da requisição.
func (s *Service) ImportJob(ctx context.Context, path, jobID string) (int64, error) {
	sink := func(stage Stage, percent int, message string) {
		s.tracker.Update(jobID, stage, percent, message)
	}

	total, err := s.importFile(ctx, path, sink)
	if err != nil {
		s.tracker.Fail(jobID, err)
		return 0, err
	}

	return total, nil
}

func (s *Service) importFile(ctx context.Context, path string, progress ProgressFunc) (int64, error) {
	report := func(stage Stage, percent int, message string) {
		if progress != nil {
			progress(stage, percent, message)
		}
	}

	report(StageReceived, 5, "Arquivo recebido")

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrCSVNotFound, path)
		}
		return 0, fmt.Errorf("erro ao acessar o CSV: %w", err)
	}

	if err := s.repo.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("erro ao abrir o CSV: %w", err)
	}
	defer file.Close()

	counting := &countingReader{reader: file}
	reader := csv.NewReader(counting)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		// Arquivo vazio: a substituição ainda vale, a tabela fica vazia
		logrus.WithField("path", path).Warn("CSV de importação vazio")
		header = nil
	} else if err != nil {
		return 0, fmt.Errorf("erro ao ler cabeçalho do CSV: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	if _, ok := columns["date"]; !ok && header != nil {
		// Tolerado: todas as datas ficam NULL; nunca inventamos datas
		logrus.WithField("path", path).Warn("CSV sem coluna date; datas ficarão nulas")
	}

	var totalRead int64
	fileSize := info.Size()

	next := func() ([]domain.MetricRow, error) {
		if header == nil {
			return nil, nil
		}

		batch := make([]domain.MetricRow, 0, s.readBatchSize)
		for len(batch) < s.readBatchSize {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("erro ao ler o CSV: %w", err)
			}

			batch = append(batch, coerceRow(record, columns))
		}

		totalRead += int64(len(batch))
		report(StageImporting, importPercent(counting.count, fileSize), fmt.Sprintf("Importando (%d linhas lidas)", totalRead))

		return batch, nil
	}

	report(StageImporting, 10, "Importando")

	written, err := s.repo.Replace(ctx, next)
	if err != nil {
		return 0, err
	}

	report(StageFinalizing, 95, "Atualizando estatísticas")

	if err := s.repo.Analyze(ctx); err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"path":         path,
		"rows_read":    totalRead,
		"rows_written": written,
	}).Info("Importação de métricas concluída")

	report(StageDone, 100, fmt.Sprintf("Importação concluída (%d linhas)", totalRead))

	return totalRead, nil
}

// coerceRow normaliza uma linha do CSV: numéricos viram número ou NULL, a data
// vira "YYYY-MM-DD" ou NULL. Nenhuma célula malformada derruba a importação.
func coerceRow(record []string, columns map[string]int) domain.MetricRow {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	numbers := make(map[string]*float64, len(numericColumns))
	for _, name := range numericColumns {
		numbers[name] = utils.ParseNumericCell(cell(name))
	}

	return domain.MetricRow{
		AccountID:    strings.TrimSpace(cell("account_id")),
		CampaignID:   strings.TrimSpace(cell("campaign_id")),
		CostMicros:   numbers["cost_micros"],
		Clicks:       numbers["clicks"],
		Conversions:  numbers["conversions"],
		Impressions:  numbers["impressions"],
		Interactions: numbers["interactions"],
		Date:         utils.NormalizeDate(cell("date")),
	}
}

// importPercent mapeia os bytes já lidos para a faixa 10–90 do progresso.
func importPercent(read, total int64) int {
	if total <= 0 {
		return 50
	}

	percent := 10 + int(read*80/total)
	if percent > 90 {
		percent = 90
	}
	return percent
}

// countingReader conta os bytes consumidos, para estimar o progresso sem
// conhecer o número de linhas do arquivo.
type countingReader struct {
	reader io.Reader
	count  int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.count += int64(n)
	return n, err
}
