package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/importing"
)

// MetricsReimportConfig representa a configuração do agendador de reimportação
type MetricsReimportConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// MetricsReimportService reimporta periodicamente o CSV oficial, para
// instalações em que o arquivo é atualizado por fora (rsync, cron externo).
type MetricsReimportService struct {
	scheduler           *gocron.Scheduler
	config              MetricsReimportConfig
	appConfig           *config.Config
	importer            importing.Importer
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

func NewMetricsReimportService(
	importer importing.Importer,
	appConfig *config.Config,
) *MetricsReimportService {
	reimportConfig := MetricsReimportConfig{
		CronSchedule: appConfig.ImportSync.CronSchedule,
		SyncEnabled:  appConfig.ImportSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": reimportConfig.CronSchedule,
		"sync_enabled":  reimportConfig.SyncEnabled,
	}).Info("Configuração do agendador de reimportação de métricas carregada")

	return &MetricsReimportService{
		scheduler:   scheduler,
		config:      reimportConfig,
		appConfig:   appConfig,
		importer:    importer,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *MetricsReimportService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Reimportação agendada de métricas desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de reimportação de métricas")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.reimportMetrics()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar reimportação de métricas: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de reimportação de métricas")
		s.scheduler.Stop()
	}()

	return nil
}

// reimportMetrics executa uma reimportação completa do CSV oficial
func (s *MetricsReimportService) reimportMetrics() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reimportação de métricas já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	path := s.appConfig.Data.MetricsCSV
	logrus.WithField("path", path).Info("Iniciando reimportação agendada de métricas")

	rows, err := s.importer.ImportFile(context.Background(), path)
	if err != nil {
		if errors.Is(err, importing.ErrCSVNotFound) {
			logrus.WithField("path", path).Warn("CSV oficial ausente; reimportação agendada ignorada")
			return
		}

		logrus.WithError(err).Error("Erro na reimportação agendada de métricas")
		return
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration": duration.String(),
		"rows":     rows,
	}).Info("Reimportação agendada de métricas concluída")

	s.lastSyncCompletedAt = time.Now()
}

// TriggerManualSync inicia manualmente uma reimportação
func (s *MetricsReimportService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reimportação de métricas já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando reimportação manual de métricas")
	go s.reimportMetrics()
}

// GetStatus retorna o status atual do agendador
func (s *MetricsReimportService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"source_path":            s.appConfig.Data.MetricsCSV,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
