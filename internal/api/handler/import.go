package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/usecases/importing"
	"github.com/vfg2006/metrics-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/metrics-dashboard-api/pkg/log"
	"github.com/vfg2006/metrics-dashboard-api/pkg/utils"
)

// maxUploadBytes limita o tamanho mantido em memória durante o parse do
// multipart; o excedente vai para arquivos temporários do próprio net/http.
const maxUploadBytes = 32 << 20

// UploadMetricsCSV recebe o CSV por multipart, grava num arquivo temporário e
// dispara a importação em background. A resposta é imediata (202) com o
// job_id para polling. Só depois da importação bem-sucedida o arquivo enviado
// vira o CSV oficial (rename atômico), para o bootstrap e a reimportação
// agendada enxergarem sempre um arquivo íntegro.
func UploadMetricsCSV(service importing.Importer, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			logger.WithField("error", err.Error()).Warn("import: multipart inválido")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Requisição multipart inválida", nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Campo file é obrigatório", nil)
			return
		}
		defer file.Close()

		if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Apenas arquivos .csv são aceitos", nil)
			return
		}

		jobID, err := utils.GenerateID()
		if err != nil {
			logger.WithField("error", err.Error()).Error("import: falha ao gerar job_id")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao iniciar importação", nil)
			return
		}

		if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
			logger.WithField("error", err.Error()).Error("import: falha ao preparar diretório de dados")
			apiErrors.WriteError(w, apiErrors.ErrImportFailed, "Erro ao iniciar importação", nil)
			return
		}

		uploadPath := filepath.Join(cfg.Data.Dir, "__upload_"+jobID+".csv")
		if err := saveUpload(file, uploadPath); err != nil {
			logger.WithFields(log.Fields{
				"path":  uploadPath,
				"error": err.Error(),
			}).Error("import: falha ao gravar upload")
			apiErrors.WriteError(w, apiErrors.ErrImportFailed, "Erro ao gravar o arquivo enviado", nil)
			return
		}

		service.Tracker().Update(jobID, importing.StageReceived, 5, "Arquivo recebido")

		logger.WithFields(log.Fields{
			"job_id":   jobID,
			"filename": header.Filename,
			"size":     header.Size,
		}).Info("import: upload recebido, iniciando importação em background")

		go runImportJob(service, jobID, uploadPath, cfg.Data.MetricsCSV)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"job_id": jobID,
		})
	})
}

// GetImportStatus devolve o estado corrente de um job de importação.
func GetImportStatus(service importing.Importer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jobID := httprouter.ParamsFromContext(r.Context()).ByName("job_id")

		status, ok := service.Tracker().Get(jobID)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrImportJobNotFound, "Job de importação não encontrado", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})
}

// runImportJob roda fora do ciclo da requisição. Usa context.Background
// porque o contexto da requisição morre junto com a resposta 202.
func runImportJob(service importing.Importer, jobID, uploadPath, officialPath string) {
	ctx := context.Background()

	rows, err := service.ImportJob(ctx, uploadPath, jobID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"job_id": jobID,
			"error":  err.Error(),
		}).Error("import: importação em background falhou")

		os.Remove(uploadPath)
		return
	}

	// Promover o upload a CSV oficial somente após o sucesso
	if err := os.Rename(uploadPath, officialPath); err != nil {
		logrus.WithFields(logrus.Fields{
			"job_id": jobID,
			"from":   uploadPath,
			"to":     officialPath,
			"error":  err.Error(),
		}).Error("import: falha ao promover o upload a CSV oficial")

		service.Tracker().Fail(jobID, err)
		os.Remove(uploadPath)
		return
	}

	service.Tracker().Complete(jobID, rows)

	logrus.WithFields(logrus.Fields{
		"job_id": jobID,
		"rows":   rows,
	}).Info("import: importação em background concluída")
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}

	return dst.Close()
}
