package handler

import (
	"net/http"
	"os"

	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/scheduler"
	"github.com/vfg2006/metrics-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/metrics-dashboard-api/pkg/log"
)

// TriggerReimport dispara manualmente uma reimportação do CSV oficial, o mesmo
// ciclo executado pelo agendador. A resposta é imediata (202); o andamento
// pode ser acompanhado pelo endpoint de status.
func TriggerReimport(service *scheduler.MetricsReimportService, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		if _, err := os.Stat(cfg.Data.MetricsCSV); err != nil {
			logger.WithFields(log.Fields{
				"path":  cfg.Data.MetricsCSV,
				"error": err.Error(),
			}).Warn("reimport: CSV oficial indisponível")
			apiErrors.WriteError(w, apiErrors.ErrImportSourceNotFound, "CSV oficial não encontrado", nil)
			return
		}

		logger.WithField("path", cfg.Data.MetricsCSV).Info("reimport: reimportação manual solicitada")

		service.TriggerManualSync()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "started",
		})
	})
}

// GetReimportStatus devolve a configuração do agendador e os marcos da última
// reimportação.
func GetReimportStatus(service *scheduler.MetricsReimportService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.GetStatus())
	})
}
