package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/database/sqlite"
	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
)

const metricsTable = "metrics"

// metricInsertColumns é a projeção completa usada na importação. Qualquer
// alteração de coluna deve ser refletida no schema, na allow-list de sort e em
// domain.MetricColumns.
var metricInsertColumns = []string{
	"account_id", "campaign_id", "cost_micros",
	"clicks", "conversions", "impressions", "interactions", "date",
}

type MetricRepository interface {
	EnsureSchema(ctx context.Context) error
	Replace(ctx context.Context, next func() ([]domain.MetricRow, error)) (int64, error)
	QueryPage(ctx context.Context, filter domain.MetricFilter, includeCost bool) ([]*domain.MetricRow, error)
	CountRows(ctx context.Context, filter domain.MetricFilter) (int, error)
	SumTotals(ctx context.Context, filter domain.MetricFilter, includeCost bool) (domain.MetricTotals, error)
	StreamExport(ctx context.Context, filter domain.MetricFilter, includeCost bool, yield func(record []string) error) error
	DateBounds(ctx context.Context) (domain.DateBounds, error)
	DistinctValues(ctx context.Context, column, query string, limit int) ([]string, error)
	Analyze(ctx context.Context) error
	Vacuum(ctx context.Context) error
}

type metricRepository struct {
	conn *sqlite.Connection
}

func NewMetricRepository(conn *sqlite.Connection) MetricRepository {
	return &metricRepository{
		conn: conn,
	}
}

// EnsureSchema cria a tabela metrics e seus índices se ainda não existirem.
// Idempotente e seguro para chamadas concorrentes; é executado antes de
// qualquer leitura ou escrita.
func (r *metricRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS metrics (
			account_id   TEXT,
			campaign_id  TEXT,
			cost_micros  REAL,
			clicks       REAL,
			conversions  REAL,
			impressions  REAL,
			interactions REAL,
			date         TEXT
		)`,
		"CREATE INDEX IF NOT EXISTS idx_metrics_date ON metrics(date)",
		"CREATE INDEX IF NOT EXISTS idx_metrics_acct ON metrics(account_id)",
		"CREATE INDEX IF NOT EXISTS idx_metrics_cmp ON metrics(campaign_id)",
	}

	for _, stmt := range statements {
		if _, err := r.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("erro ao garantir schema: %w", err)
		}
	}

	return nil
}

// Replace substitui todo o conteúdo da tabela dentro de uma única transação:
// DELETE seguido dos INSERTs em lotes. next devolve o próximo lote de linhas
// já normalizadas e nil quando a fonte termina. Em caso de erro a transação é
// revertida e o conteúdo anterior permanece intacto.
func (r *metricRepository) Replace(ctx context.Context, next func() ([]domain.MetricRow, error)) (int64, error) {
	var written int64

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM metrics"); err != nil {
			return fmt.Errorf("erro ao limpar a tabela metrics: %w", err)
		}

		for {
			batch, err := next()
			if err != nil {
				return err
			}
			if len(batch) == 0 {
				return nil
			}

			n, err := insertBatch(ctx, tx, batch)
			if err != nil {
				return err
			}
			written += n
		}
	})
	if err != nil {
		return 0, err
	}

	return written, nil
}

// insertBatch grava um lote de leitura em sub-lotes cujo tamanho respeita o
// teto de parâmetros por statement do SQLite, com margem de segurança de um
// sub-lote abaixo do máximo teórico. Ultrapassar o teto causa falha dura de
// escrita ("too many SQL variables") em importações grandes.
func insertBatch(ctx context.Context, tx *sql.Tx, rows []domain.MetricRow) (int64, error) {
	rowsPerInsert := sqlite.MaxStatementParams/len(metricInsertColumns) - 1
	if rowsPerInsert < 1 {
		rowsPerInsert = 1
	}

	var written int64
	for start := 0; start < len(rows); start += rowsPerInsert {
		end := start + rowsPerInsert
		if end > len(rows) {
			end = len(rows)
		}

		builder := squirrel.
			Insert(metricsTable).
			Columns(metricInsertColumns...)

		for _, row := range rows[start:end] {
			builder = builder.Values(
				row.AccountID,
				row.CampaignID,
				nullableFloat(row.CostMicros),
				nullableFloat(row.Clicks),
				nullableFloat(row.Conversions),
				nullableFloat(row.Impressions),
				nullableFloat(row.Interactions),
				nullableString(row.Date),
			)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return written, fmt.Errorf("erro ao construir a query de insert: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return written, fmt.Errorf("erro ao inserir lote de métricas: %w", err)
		}

		written += int64(end - start)
	}

	return written, nil
}

// QueryPage devolve uma página do conjunto filtrado, com projeção de colunas
// conforme includeCost e ordenação restrita à allow-list. O filtro deve estar
// normalizado (domain.MetricFilter.Normalize).
func (r *metricRepository) QueryPage(ctx context.Context, filter domain.MetricFilter, includeCost bool) ([]*domain.MetricRow, error) {
	builder := squirrel.
		Select(domain.MetricColumns(includeCost)...).
		From(metricsTable).
		OrderBy(orderClause(filter)).
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset()))

	query, args, err := applyMetricFilter(builder, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.MetricRow, 0, filter.PageSize)
	for rows.Next() {
		row, err := scanMetricRow(rows, includeCost)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear métrica: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return result, nil
}

// CountRows conta o conjunto filtrado inteiro, sem paginação.
func (r *metricRepository) CountRows(ctx context.Context, filter domain.MetricFilter) (int, error) {
	builder := squirrel.
		Select("COUNT(*)").
		From(metricsTable)

	query, args, err := applyMetricFilter(builder, filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var total int
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("erro ao contar métricas: %w", err)
	}

	return total, nil
}

// SumTotals calcula os somatórios sobre o mesmo predicado da página. COALESCE
// garante 0.0 para conjuntos vazios ou colunas totalmente nulas.
func (r *metricRepository) SumTotals(ctx context.Context, filter domain.MetricFilter, includeCost bool) (domain.MetricTotals, error) {
	cols := []string{
		"COALESCE(SUM(clicks), 0)",
		"COALESCE(SUM(conversions), 0)",
		"COALESCE(SUM(impressions), 0)",
		"COALESCE(SUM(interactions), 0)",
	}
	if includeCost {
		cols = append(cols, "COALESCE(SUM(cost_micros), 0)")
	}

	builder := squirrel.
		Select(cols...).
		From(metricsTable)

	query, args, err := applyMetricFilter(builder, filter).ToSql()
	if err != nil {
		return domain.MetricTotals{}, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var totals domain.MetricTotals
	var cost float64
	dest := []interface{}{&totals.Clicks, &totals.Conversions, &totals.Impressions, &totals.Interactions}
	if includeCost {
		dest = append(dest, &cost)
	}

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		return domain.MetricTotals{}, fmt.Errorf("erro ao calcular totais: %w", err)
	}

	if includeCost {
		totals.CostMicros = &cost
	}

	return totals, nil
}

// StreamExport percorre o conjunto filtrado inteiro (sem paginação) na ordem
// pedida e entrega cada linha já formatada como registro CSV através de yield.
// Nada é materializado: cada linha é entregue conforme o banco a produz.
func (r *metricRepository) StreamExport(ctx context.Context, filter domain.MetricFilter, includeCost bool, yield func(record []string) error) error {
	builder := squirrel.
		Select(domain.MetricColumns(includeCost)...).
		From(metricsTable).
		OrderBy(orderClause(filter))

	query, args, err := applyMetricFilter(builder, filter).ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		row, err := scanMetricRow(rows, includeCost)
		if err != nil {
			return fmt.Errorf("erro ao escanear métrica: %w", err)
		}

		if err := yield(encodeRecord(row, includeCost)); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return nil
}

// DateBounds devolve MIN(date) e MAX(date) da tabela inteira, ignorando
// filtros. Tabela vazia devolve ambos nil.
func (r *metricRepository) DateBounds(ctx context.Context) (domain.DateBounds, error) {
	var min, max sql.NullString
	err := r.conn.QueryRowContext(ctx, "SELECT MIN(date), MAX(date) FROM metrics").Scan(&min, &max)
	if err != nil {
		return domain.DateBounds{}, fmt.Errorf("erro ao consultar bounds de data: %w", err)
	}

	bounds := domain.DateBounds{}
	if min.Valid {
		bounds.Min = &min.String
	}
	if max.Valid {
		bounds.Max = &max.String
	}

	return bounds, nil
}

// DistinctValues devolve os valores distintos de uma coluna de facet
// (account_id/campaign_id), com filtro de substring opcional, ordenados
// ascendentemente e limitados. Coluna fora da allow-list devolve lista vazia,
// não erro.
func (r *metricRepository) DistinctValues(ctx context.Context, column, query string, limit int) ([]string, error) {
	if _, ok := domain.FacetColumns[column]; !ok {
		return []string{}, nil
	}

	builder := squirrel.
		Select("DISTINCT " + column).
		From(metricsTable).
		OrderBy(column).
		Limit(uint64(limit))

	if query != "" {
		builder = builder.Where(squirrel.Like{column: "%" + query + "%"})
	}

	sqlQuery, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0, limit)
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("erro ao escanear valor distinto: %w", err)
		}
		if value.Valid {
			values = append(values, value.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return values, nil
}

// Analyze atualiza as estatísticas do planner após uma importação, para que as
// próximas queries não sejam planejadas com estatísticas obsoletas.
func (r *metricRepository) Analyze(ctx context.Context) error {
	if _, err := r.conn.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("erro ao executar ANALYZE: %w", err)
	}
	return nil
}

// Vacuum compacta o arquivo do banco. Usado apenas pelo CLI de importação.
func (r *metricRepository) Vacuum(ctx context.Context) error {
	if _, err := r.conn.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("erro ao executar VACUUM: %w", err)
	}
	return nil
}

// applyMetricFilter traduz o filtro em predicados parametrizados: datas como
// comparação inclusiva de strings ISO, IDs como substring (LIKE).
func applyMetricFilter(builder squirrel.SelectBuilder, filter domain.MetricFilter) squirrel.SelectBuilder {
	if filter.DateFrom != "" {
		builder = builder.Where(squirrel.GtOrEq{"date": filter.DateFrom})
	}
	if filter.DateTo != "" {
		builder = builder.Where(squirrel.LtOrEq{"date": filter.DateTo})
	}
	if filter.AccountID != "" {
		builder = builder.Where(squirrel.Like{"account_id": "%" + filter.AccountID + "%"})
	}
	if filter.CampaignID != "" {
		builder = builder.Where(squirrel.Like{"campaign_id": "%" + filter.CampaignID + "%"})
	}
	return builder
}

// orderClause monta o ORDER BY revalidando o identificador contra a
// allow-list. Só identificadores validados entram no texto da query; valores
// são sempre parâmetros.
func orderClause(filter domain.MetricFilter) string {
	sortBy := filter.SortBy
	if _, ok := domain.AllowedSortColumns[sortBy]; !ok {
		sortBy = domain.DefaultSortColumn
	}

	dir := "ASC"
	if strings.EqualFold(filter.SortDir, "desc") {
		dir = "DESC"
	}

	return sortBy + " " + dir
}

func scanMetricRow(rows *sql.Rows, includeCost bool) (*domain.MetricRow, error) {
	var (
		row          domain.MetricRow
		cost         sql.NullFloat64
		clicks       sql.NullFloat64
		conversions  sql.NullFloat64
		impressions  sql.NullFloat64
		interactions sql.NullFloat64
		date         sql.NullString
	)

	dest := []interface{}{&row.AccountID, &row.CampaignID}
	if includeCost {
		dest = append(dest, &cost)
	}
	dest = append(dest, &clicks, &conversions, &impressions, &interactions, &date)

	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	if includeCost && cost.Valid {
		row.CostMicros = &cost.Float64
	}
	if clicks.Valid {
		row.Clicks = &clicks.Float64
	}
	if conversions.Valid {
		row.Conversions = &conversions.Float64
	}
	if impressions.Valid {
		row.Impressions = &impressions.Float64
	}
	if interactions.Valid {
		row.Interactions = &interactions.Float64
	}
	if date.Valid {
		row.Date = &date.String
	}

	return &row, nil
}

// encodeRecord formata uma linha na ordem da projeção ativa; numéricos nulos
// viram campo vazio.
func encodeRecord(row *domain.MetricRow, includeCost bool) []string {
	record := []string{row.AccountID, row.CampaignID}
	if includeCost {
		record = append(record, formatFloat(row.CostMicros))
	}
	record = append(record,
		formatFloat(row.Clicks),
		formatFloat(row.Conversions),
		formatFloat(row.Impressions),
		formatFloat(row.Interactions),
	)
	if row.Date != nil {
		record = append(record, *row.Date)
	} else {
		record = append(record, "")
	}
	return record
}

func formatFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func nullableFloat(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
