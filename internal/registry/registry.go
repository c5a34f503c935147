package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrActiveJob is returned by Create while another job is pending or running.
	ErrActiveJob = errors.New("another download is already in progress")
	// ErrJobNotFound is returned by Get for an unknown job id.
	ErrJobNotFound = errors.New("job not found")
)

// Registry is the in-memory job store. A single mutex covers both the
// "check active + insert" sequence and every read/update, so concurrent
// creates can never both observe "no active job" and pollers always see a
// consistent snapshot. Records live for the process lifetime; nothing is
// ever deleted.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func New() *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
	}
}

// Create inserts a new pending job for req and returns its id. It fails with
// ErrActiveJob if any record is currently pending or running.
func (r *Registry) Create(req Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, job := range r.jobs {
		if job.Status.IsActive() {
			return "", ErrActiveJob
		}
	}

	id := uuid.New().String()
	r.jobs[id] = &Job{
		ID:        id,
		Status:    StatusPending,
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}

	return id, nil
}

// Get returns a snapshot copy of the job, or ErrJobNotFound.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// Update merges the non-nil fields of upd into the record. Unknown ids are a
// silent no-op: the runner is the only writer per job, so the record can only
// be missing if it never existed.
func (r *Registry) Update(id string, upd Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}

	if upd.Status != nil {
		job.Status = *upd.Status
	}
	if upd.StartedAt != nil {
		job.StartedAt = upd.StartedAt
	}
	if upd.FinishedAt != nil {
		job.FinishedAt = upd.FinishedAt
	}
	if upd.ProgressPercent != nil {
		job.ProgressPercent = upd.ProgressPercent
	}
	if upd.CurrentTitle != nil {
		job.CurrentTitle = *upd.CurrentTitle
	}
	if upd.Speed != nil {
		job.Speed = *upd.Speed
	}
	if upd.CurrentEpisode != nil {
		job.CurrentEpisode = upd.CurrentEpisode
	}
	if upd.ResultPath != nil {
		job.ResultPath = *upd.ResultPath
	}
	if upd.Message != nil {
		job.Message = *upd.Message
	}
	if upd.Error != nil {
		job.Error = *upd.Error
	}
}
