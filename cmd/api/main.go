package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/database/sqlite"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard-api/internal/api"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/scheduler"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/exporting"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/importing"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/querying"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := sqliteConn(ctx, cfg.Data)
	defer conn.Close()

	metricRepo := repository.NewMetricRepository(conn)
	userRepo := repository.NewUserRepository(cfg.Data.UsersCSV)

	authenticator := authenticating.NewService(userRepo, cfg)

	tracker := importing.NewTracker(0)
	importService := importing.NewService(metricRepo, tracker, cfg)
	queryService := querying.NewService(metricRepo, importService, cfg)
	exportService := exporting.NewService(metricRepo, queryService)

	reimportService := scheduler.NewMetricsReimportService(importService, cfg)
	if err := reimportService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de reimportação de métricas")
	} else {
		logrus.Info("Agendador de reimportação de métricas iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		queryService,
		exportService,
		importService,
		reimportService,
		authenticator,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// sqliteConn abre o banco de dados e valida a conexão
func sqliteConn(ctx context.Context, dataConfig config.Data) *sqlite.Connection {
	conn, err := sqlite.NewConnection(ctx, dataConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao abrir o banco de dados SQLite")
	}

	if err := conn.Ping(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com o SQLite")
	}

	logrus.Info("Conexão com o SQLite estabelecida com sucesso")
	return conn
}
