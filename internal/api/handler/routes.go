package handler

import (
	"net/http"

	"github.com/vfg2006/metrics-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/scheduler"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/exporting"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/importing"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/querying"
	"github.com/vfg2006/metrics-dashboard-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Metrics(service querying.Querier) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/metrics",
			Method:      http.MethodGet,
			Handler:     GetMetrics(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/metrics/compare",
			Method:      http.MethodGet,
			Handler:     ComparePeriods(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/metrics/date-range",
			Method:      http.MethodGet,
			Handler:     GetDateRange(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/metrics/options",
			Method:      http.MethodGet,
			Handler:     GetOptions(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Export(service exporting.Exporter) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/metrics/export",
			Method:      http.MethodGet,
			Handler:     ExportMetrics(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Reimport(service *scheduler.MetricsReimportService, cfg *config.Config) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/metrics/reimport",
			Method:      http.MethodPost,
			Handler:     TriggerReimport(service, cfg),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/metrics/reimport/status",
			Method:      http.MethodGet,
			Handler:     GetReimportStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func Import(service importing.Importer, cfg *config.Config) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/metrics/import",
			Method:      http.MethodPost,
			Handler:     UploadMetricsCSV(service, cfg),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/metrics/import/:job_id/status",
			Method:      http.MethodGet,
			Handler:     GetImportStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}
