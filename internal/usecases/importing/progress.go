package importing

import (
	"sync"
	"time"
)

// Stage identifica o marco atual de um job de importação.
type Stage string

const (
	StageReceived   Stage = "received"
	StageImporting  Stage = "importing"
	StageFinalizing Stage = "finalizing"
	StageDone       Stage = "done"
	StageError      Stage = "error"
)

// ProgressFunc recebe os marcos grosseiros do progresso de uma importação.
// É um gancho para o chamador; não participa da correção do algoritmo.
type ProgressFunc func(stage Stage, percent int, message string)

// JobStatus é o estado corrente de um job de importação, consultável por
// polling enquanto a importação roda fora do caminho da requisição.
type JobStatus struct {
	JobID     string    `json:"job_id"`
	Stage     Stage     `json:"stage"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message,omitempty"`
	Rows      int64     `json:"rows_imported,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker guarda o progresso dos jobs em memória, processo-wide, protegido
// por um único mutex. Entradas antigas são varridas por TTL a cada acesso
// para que o mapa não cresça sem limite.
type Tracker struct {
	mu   sync.Mutex
	ttl  time.Duration
	jobs map[string]*JobStatus
}

const defaultJobTTL = 1 * time.Hour

func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = defaultJobTTL
	}

	return &Tracker{
		ttl:  ttl,
		jobs: make(map[string]*JobStatus),
	}
}

// Update registra um marco do job, criando a entrada no primeiro uso.
func (t *Tracker) Update(jobID string, stage Stage, percent int, message string) {
	if jobID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweepLocked()

	status, ok := t.jobs[jobID]
	if !ok {
		status = &JobStatus{JobID: jobID}
		t.jobs[jobID] = status
	}

	status.Stage = stage
	status.Percent = percent
	status.Message = message
	status.UpdatedAt = time.Now()
}

// Complete marca o job como concluído com o total de linhas importadas.
func (t *Tracker) Complete(jobID string, rows int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status, ok := t.jobs[jobID]
	if !ok {
		status = &JobStatus{JobID: jobID}
		t.jobs[jobID] = status
	}

	status.Stage = StageDone
	status.Percent = 100
	status.Rows = rows
	status.Message = ""
	status.UpdatedAt = time.Now()
}

// Fail marca o job como falho, preservando a mensagem do erro.
func (t *Tracker) Fail(jobID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status, ok := t.jobs[jobID]
	if !ok {
		status = &JobStatus{JobID: jobID}
		t.jobs[jobID] = status
	}

	status.Stage = StageError
	status.Percent = 100
	status.Message = err.Error()
	status.UpdatedAt = time.Now()
}

// Get devolve uma cópia do estado do job, se conhecido.
func (t *Tracker) Get(jobID string) (JobStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweepLocked()

	status, ok := t.jobs[jobID]
	if !ok {
		return JobStatus{}, false
	}

	return *status, true
}

// sweepLocked remove entradas mais antigas que o TTL. Chamar com o mutex
// adquirido.
func (t *Tracker) sweepLocked() {
	cutoff := time.Now().Add(-t.ttl)
	for jobID, status := range t.jobs {
		if status.UpdatedAt.Before(cutoff) {
			delete(t.jobs, jobID)
		}
	}
}
