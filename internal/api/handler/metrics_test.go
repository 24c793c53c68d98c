package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
	"github.com/vfg2006/metrics-dashboard-api/pkg/middleware"
)

// stubQuerier devolve respostas fixas e registra o includeCost recebido.
type stubQuerier struct {
	page        *domain.MetricPage
	comparison  *domain.PeriodComparison
	bounds      domain.DateBounds
	values      []string
	includeCost bool
	column      string
}

func (s *stubQuerier) EnsureReady(context.Context) error {
	return nil
}

func (s *stubQuerier) QueryPage(_ context.Context, _ domain.MetricFilter, includeCost bool) (*domain.MetricPage, error) {
	s.includeCost = includeCost
	return s.page, nil
}

func (s *stubQuerier) ComparePeriods(_ context.Context, _, _ domain.Period, includeCost bool) (*domain.PeriodComparison, error) {
	s.includeCost = includeCost
	return s.comparison, nil
}

func (s *stubQuerier) DateBounds(context.Context) (domain.DateBounds, error) {
	return s.bounds, nil
}

func (s *stubQuerier) DistinctValues(_ context.Context, column, _ string, _ int) ([]string, error) {
	s.column = column
	return s.values, nil
}

func requestWithRole(method, target, role string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if role == "" {
		return req
	}

	claims := &domain.Claims{Identity: "someone", Role: role}
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUser, claims)
	return req.WithContext(ctx)
}

func TestGetMetrics_ProjecaoPorPapel(t *testing.T) {
	tests := []struct {
		name        string
		role        string
		includeCost bool
	}{
		{name: "Admin vê custo", role: domain.RoleAdmin, includeCost: true},
		{name: "Usuário comum não vê custo", role: domain.RoleUser, includeCost: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubQuerier{page: &domain.MetricPage{Rows: []*domain.MetricRow{}}}
			rec := httptest.NewRecorder()

			GetMetrics(service).ServeHTTP(rec, requestWithRole(http.MethodGet, "/v1/metrics", tt.role))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.includeCost, service.includeCost)
		})
	}
}

func TestGetMetrics_DataInvalida(t *testing.T) {
	service := &stubQuerier{page: &domain.MetricPage{}}
	rec := httptest.NewRecorder()

	GetMetrics(service).ServeHTTP(rec, requestWithRole(http.MethodGet, "/v1/metrics?date_from=15/01/2024", domain.RoleAdmin))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VAL_003")
}

func TestGetMetrics_PaginaNaoNumerica(t *testing.T) {
	service := &stubQuerier{page: &domain.MetricPage{}}
	rec := httptest.NewRecorder()

	GetMetrics(service).ServeHTTP(rec, requestWithRole(http.MethodGet, "/v1/metrics?page=abc", domain.RoleAdmin))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComparePeriods_DataInvalida(t *testing.T) {
	service := &stubQuerier{comparison: &domain.PeriodComparison{}}
	rec := httptest.NewRecorder()

	ComparePeriods(service).ServeHTTP(rec, requestWithRole(http.MethodGet, "/v1/metrics/compare?date_from_a=bad", domain.RoleUser))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComparePeriods_RespostaCompleta(t *testing.T) {
	pct := 50.0
	service := &stubQuerier{comparison: &domain.PeriodComparison{
		DiffAbs: map[string]float64{"clicks": 5},
		DiffPct: map[string]*float64{"clicks": &pct, "conversions": nil},
	}}
	rec := httptest.NewRecorder()

	target := "/v1/metrics/compare?date_from_a=2024-01-01&date_to_a=2024-01-31&date_from_b=2024-02-01&date_to_b=2024-02-29"
	ComparePeriods(service).ServeHTTP(rec, requestWithRole(http.MethodGet, target, domain.RoleUser))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, service.includeCost)

	var body domain.PeriodComparison
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5.0, body.DiffAbs["clicks"])
	assert.Nil(t, body.DiffPct["conversions"])
}

func TestGetOptions(t *testing.T) {
	service := &stubQuerier{values: []string{"acc-1", "acc-2"}}
	rec := httptest.NewRecorder()

	GetOptions(service).ServeHTTP(rec, requestWithRole(http.MethodGet, "/v1/metrics/options?column=account_id&q=acc", domain.RoleUser))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "account_id", service.column)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"acc-1", "acc-2"}, body["values"])
}

func TestGetOptions_SemColuna(t *testing.T) {
	service := &stubQuerier{}
	rec := httptest.NewRecorder()

	GetOptions(service).ServeHTTP(rec, requestWithRole(http.MethodGet, "/v1/metrics/options", domain.RoleUser))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDateRange(t *testing.T) {
	min, max := "2024-01-01", "2024-02-10"
	service := &stubQuerier{bounds: domain.DateBounds{Min: &min, Max: &max}}
	rec := httptest.NewRecorder()

	GetDateRange(service).ServeHTTP(rec, requestWithRole(http.MethodGet, "/v1/metrics/date-range", domain.RoleUser))

	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.DateBounds
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Min)
	assert.Equal(t, "2024-01-01", *body.Min)
}
