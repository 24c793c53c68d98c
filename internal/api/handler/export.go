package handler

import (
	"net/http"
	"time"

	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/exporting"
	"github.com/vfg2006/metrics-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/metrics-dashboard-api/pkg/log"
)

// ExportMetrics transmite o conjunto filtrado inteiro como CSV. A resposta é
// escrita em streaming; depois da primeira linha não há como trocar o status
// por um erro, então falhas tardias apenas interrompem o corpo.
func ExportMetrics(service exporting.Exporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		filter, err := parseMetricFilter(r)
		if err != nil {
			logger.WithField("error", err.Error()).Warn("export: parâmetros de filtro inválidos")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		filename := service.Filename(filter.DateFrom, filter.DateTo, time.Now())

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

		if err := service.Stream(r.Context(), w, filter, includeCost(r)); err != nil {
			logger.WithFields(log.Fields{
				"filename": filename,
				"error":    err.Error(),
			}).Error("export: falha durante o streaming do CSV")
			return
		}

		logger.WithField("filename", filename).Info("export: exportação concluída")
	})
}
