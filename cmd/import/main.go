package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/database/sqlite"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/importing"
)

// CLI de importação: substitui o conteúdo do banco pelo CSV indicado e
// compacta o arquivo ao final. Pensado para cargas iniciais e operação manual;
// o caminho online é o endpoint de upload da API.
func main() {
	csvPath := flag.String("csv", "", "caminho do CSV de métricas (default: METRICS_CSV da configuração)")
	skipVacuum := flag.Bool("skip-vacuum", false, "não executar VACUUM após a importação")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	path := *csvPath
	if path == "" {
		path = cfg.Data.MetricsCSV
	}

	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, cfg.Data)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao abrir o banco de dados SQLite")
	}
	defer conn.Close()

	metricRepo := repository.NewMetricRepository(conn)
	importService := importing.NewService(metricRepo, importing.NewTracker(0), cfg)

	startTime := time.Now()
	logrus.WithField("path", path).Info("Iniciando importação de métricas")

	rows, err := importService.ImportFile(ctx, path)
	if err != nil {
		logrus.WithError(err).Fatal("Erro na importação de métricas")
	}

	if !*skipVacuum {
		logrus.Info("Executando VACUUM")
		if err := metricRepo.Vacuum(ctx); err != nil {
			logrus.WithError(err).Error("Erro ao executar VACUUM")
		}
	}

	logrus.WithFields(logrus.Fields{
		"rows":     rows,
		"duration": time.Since(startTime).String(),
	}).Info("Importação de métricas concluída")
}
