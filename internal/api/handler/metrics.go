package handler

import (
	"net/http"
	"strconv"

	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/querying"
	"github.com/vfg2006/metrics-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/metrics-dashboard-api/pkg/log"
	"github.com/vfg2006/metrics-dashboard-api/pkg/middleware"
	"github.com/vfg2006/metrics-dashboard-api/pkg/utils"
)

// GetMetrics devolve uma página do conjunto filtrado junto com total e
// somatórios. A coluna cost_micros só aparece para administradores.
func GetMetrics(service querying.Querier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		filter, err := parseMetricFilter(r)
		if err != nil {
			logger.WithField("error", err.Error()).Warn("metrics: parâmetros de filtro inválidos")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		page, err := service.QueryPage(r.Context(), filter, includeCost(r))
		if err != nil {
			logger.WithField("error", err.Error()).Error("metrics: falha ao consultar métricas")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar métricas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(page); err != nil {
			logger.WithField("error", err.Error()).Error("metrics: falha ao codificar resposta")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
		}
	})
}

// ComparePeriods compara os totais de dois períodos independentes.
// Parâmetros: date_from_a, date_to_a, date_from_b, date_to_b (ISO, opcionais).
func ComparePeriods(service querying.Querier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		query := r.URL.Query()
		dates := map[string]string{
			"date_from_a": query.Get("date_from_a"),
			"date_to_a":   query.Get("date_to_a"),
			"date_from_b": query.Get("date_from_b"),
			"date_to_b":   query.Get("date_to_b"),
		}

		for name, value := range dates {
			if err := utils.ValidateISODate(value); err != nil {
				logger.WithField(name, value).Warn("metrics: data inválida na comparação de períodos")
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro "+name+" deve ser uma data no formato YYYY-MM-DD", nil)
				return
			}
		}

		periodA := domain.Period{DateFrom: dates["date_from_a"], DateTo: dates["date_to_a"]}
		periodB := domain.Period{DateFrom: dates["date_from_b"], DateTo: dates["date_to_b"]}

		comparison, err := service.ComparePeriods(r.Context(), periodA, periodB, includeCost(r))
		if err != nil {
			logger.WithField("error", err.Error()).Error("metrics: falha ao comparar períodos")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao comparar períodos", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(comparison); err != nil {
			logger.WithField("error", err.Error()).Error("metrics: falha ao codificar resposta")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
		}
	})
}

// GetDateRange devolve as datas mínima e máxima presentes no banco.
func GetDateRange(service querying.Querier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		bounds, err := service.DateBounds(r.Context())
		if err != nil {
			logger.WithField("error", err.Error()).Error("metrics: falha ao consultar intervalo de datas")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar intervalo de datas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(bounds); err != nil {
			logger.WithField("error", err.Error()).Error("metrics: falha ao codificar resposta")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
		}
	})
}

// GetOptions devolve valores distintos de uma dimensão para autocomplete.
// Parâmetros: column (obrigatório), q (substring opcional), limit.
func GetOptions(service querying.Querier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		query := r.URL.Query()
		column := query.Get("column")
		if column == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Parâmetro column é obrigatório", nil)
			return
		}

		limit := 0
		if raw := query.Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro limit deve ser um inteiro", nil)
				return
			}
			limit = parsed
		}

		values, err := service.DistinctValues(r.Context(), column, query.Get("q"), limit)
		if err != nil {
			logger.WithFields(log.Fields{
				"column": column,
				"error":  err.Error(),
			}).Error("metrics: falha ao consultar valores distintos")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar valores", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string][]string{
			"values": values,
		}); err != nil {
			logger.WithField("error", err.Error()).Error("metrics: falha ao codificar resposta")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
		}
	})
}

// parseMetricFilter monta o filtro a partir da query string. Datas malformadas
// são rejeitadas; sort/paginação fora da faixa são saneados em Normalize, não
// rejeitados.
func parseMetricFilter(r *http.Request) (domain.MetricFilter, error) {
	query := r.URL.Query()

	filter := domain.MetricFilter{
		DateFrom:   query.Get("date_from"),
		DateTo:     query.Get("date_to"),
		AccountID:  query.Get("account_id"),
		CampaignID: query.Get("campaign_id"),
		SortBy:     query.Get("sort_by"),
		SortDir:    query.Get("sort_dir"),
	}

	if err := utils.ValidateISODate(filter.DateFrom); err != nil {
		return domain.MetricFilter{}, errInvalidDate("date_from")
	}
	if err := utils.ValidateISODate(filter.DateTo); err != nil {
		return domain.MetricFilter{}, errInvalidDate("date_to")
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return domain.MetricFilter{}, errInvalidInt("page")
		}
		filter.Page = page
	}

	if raw := query.Get("page_size"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			return domain.MetricFilter{}, errInvalidInt("page_size")
		}
		filter.PageSize = pageSize
	}

	return filter, nil
}

// includeCost decide a projeção a partir do papel presente no token.
func includeCost(r *http.Request) bool {
	claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
	return ok && claims.IsAdmin()
}

type paramError struct {
	message string
}

func (e paramError) Error() string {
	return e.message
}

func errInvalidDate(name string) error {
	return paramError{message: "Parâmetro " + name + " deve ser uma data no formato YYYY-MM-DD"}
}

func errInvalidInt(name string) error {
	return paramError{message: "Parâmetro " + name + " deve ser um inteiro"}
}
