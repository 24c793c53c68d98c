package domain

import "strings"

// Colunas permitidas para ORDER BY. Qualquer coluna fora desta lista cai no
// fallback (date) em vez de gerar erro — nunca interpolamos valores vindos do
// cliente diretamente na query, apenas identificadores desta allow-list.
var AllowedSortColumns = map[string]struct{}{
	"account_id":   {},
	"campaign_id":  {},
	"cost_micros":  {},
	"clicks":       {},
	"conversions":  {},
	"impressions":  {},
	"interactions": {},
	"date":         {},
}

// FacetColumns são as dimensões expostas para autocomplete de valores distintos.
var FacetColumns = map[string]struct{}{
	"account_id":  {},
	"campaign_id": {},
}

const (
	DefaultSortColumn = "date"
	DefaultPageSize   = 50
	MaxPageSize       = 200
)

// MetricRow representa uma linha da tabela metrics. Campos numéricos são
// ponteiros: NULL no banco vira nil (células não numéricas do CSV são
// convertidas para NULL na importação, nunca rejeitadas).
type MetricRow struct {
	AccountID    string   `json:"account_id"`
	CampaignID   string   `json:"campaign_id"`
	CostMicros   *float64 `json:"cost_micros,omitempty"`
	Clicks       *float64 `json:"clicks"`
	Conversions  *float64 `json:"conversions"`
	Impressions  *float64 `json:"impressions"`
	Interactions *float64 `json:"interactions"`
	Date         *string  `json:"date"`
}

// MetricFilter carrega os filtros/ordenação/paginação de uma requisição.
// Construído por requisição e descartado depois.
type MetricFilter struct {
	DateFrom   string `json:"date_from"`
	DateTo     string `json:"date_to"`
	AccountID  string `json:"account_id"`
	CampaignID string `json:"campaign_id"`
	SortBy     string `json:"sort_by"`
	SortDir    string `json:"sort_dir"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// Normalize aplica defaults e saneamento: sort fora da allow-list vira "date",
// direção desconhecida vira ASC, page >= 1 e page_size entre 1 e 200.
func (f *MetricFilter) Normalize() {
	if _, ok := AllowedSortColumns[f.SortBy]; !ok {
		f.SortBy = DefaultSortColumn
	}

	if strings.EqualFold(f.SortDir, "desc") {
		f.SortDir = "DESC"
	} else {
		f.SortDir = "ASC"
	}

	if f.Page < 1 {
		f.Page = 1
	}

	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset calcula o deslocamento da página atual. Assume filtro normalizado.
func (f MetricFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// MetricTotals são os somatórios do conjunto filtrado inteiro (sem paginação).
// CostMicros só é preenchido quando o papel do usuário permite ver custo.
type MetricTotals struct {
	Clicks       float64  `json:"clicks"`
	Conversions  float64  `json:"conversions"`
	Impressions  float64  `json:"impressions"`
	Interactions float64  `json:"interactions"`
	CostMicros   *float64 `json:"cost_micros,omitempty"`
}

// AsMap devolve os totais indexados pelo nome da coluna, incluindo cost_micros
// apenas quando presente. Usado na comparação de períodos.
func (t MetricTotals) AsMap() map[string]float64 {
	m := map[string]float64{
		"clicks":       t.Clicks,
		"conversions":  t.Conversions,
		"impressions":  t.Impressions,
		"interactions": t.Interactions,
	}
	if t.CostMicros != nil {
		m["cost_micros"] = *t.CostMicros
	}
	return m
}

// MetricPage é o resultado de uma consulta paginada: a página de linhas mais o
// total e os somatórios calculados sobre o MESMO predicado, antes da paginação.
type MetricPage struct {
	Rows     []*MetricRow `json:"rows"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Total    int          `json:"total"`
	Totals   MetricTotals `json:"totals"`
}

// Period delimita um intervalo de datas (inclusivo) para comparação.
type Period struct {
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// PeriodComparison compara os totais de dois períodos independentes.
// DiffPct[k] é nil quando o total do período A é zero (evita divisão por zero).
type PeriodComparison struct {
	PeriodA MetricTotals        `json:"period_a"`
	PeriodB MetricTotals        `json:"period_b"`
	DiffAbs map[string]float64  `json:"diff_abs"`
	DiffPct map[string]*float64 `json:"diff_pct"`
}

// DateBounds são as datas mínima e máxima presentes na tabela, ou nil quando
// a tabela está vazia. Usadas para preencher os inputs do front.
type DateBounds struct {
	Min *string `json:"min"`
	Max *string `json:"max"`
}

// MetricColumns devolve a projeção de colunas conforme o papel do usuário.
// Sem includeCost a coluna cost_micros é omitida por completo — esta é a
// fronteira de controle de acesso e vale para linhas, totais e exportação.
func MetricColumns(includeCost bool) []string {
	if includeCost {
		return []string{"account_id", "campaign_id", "cost_micros", "clicks", "conversions", "impressions", "interactions", "date"}
	}
	return []string{"account_id", "campaign_id", "clicks", "conversions", "impressions", "interactions", "date"}
}
