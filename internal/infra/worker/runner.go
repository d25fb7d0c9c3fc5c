// File: internal/infra/worker/runner.go
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"matchday-reports/internal/domain"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/adapter"
	"matchday-reports/internal/domain/ports/repository"
	"matchday-reports/internal/infra/metrics"
)

type JobErrorKind string

const (
	JobErrorTimeout  JobErrorKind = "timeout"
	JobErrorProvider JobErrorKind = "provider"
	JobErrorInternal JobErrorKind = "internal"
)

// JobError is the classified failure a handler hands back to the runner.
// The runner switches on Kind to build the persisted last_error.
type JobError struct {
	Kind JobErrorKind
	Err  error
}

func (e *JobError) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }
func (e *JobError) Unwrap() error { return e.Err }

// Handler runs one enrichment job inside the runner's transaction. A nil
// return means the handler resolved the job itself (succeeded, requeued for
// another attempt, or failed with its own last_error already written). A
// *JobError return asks the runner to mark the job failed with a classified
// message.
type Handler interface {
	Run(ctx context.Context, tx repository.Tx, job *model.Job, report *model.Report) error
}

// Runner consumes job messages from the queue one at a time. A message that
// cannot be acted on (malformed payload, unknown type, missing row, already
// succeeded) is dropped with a log line, never retried: the job rows are the
// source of truth, the queue is only a wake-up channel.
type Runner struct {
	queue      adapter.JobQueue
	jobRepo    repository.JobRepository
	reportRepo repository.ReportRepository
	tm         repository.TransactionManager
	handlers   map[model.JobType]Handler
	log        *zerolog.Logger

	mu           sync.Mutex
	currentJobID string
}

func NewRunner(
	queue adapter.JobQueue,
	jobRepo repository.JobRepository,
	reportRepo repository.ReportRepository,
	tm repository.TransactionManager,
	handlers map[model.JobType]Handler,
	log *zerolog.Logger,
) *Runner {
	return &Runner{
		queue:      queue,
		jobRepo:    jobRepo,
		reportRepo: reportRepo,
		tm:         tm,
		handlers:   handlers,
		log:        log,
	}
}

// CurrentJobID reports the job being processed right now, empty when idle.
func (r *Runner) CurrentJobID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentJobID
}

func (r *Runner) setCurrentJob(id string) {
	r.mu.Lock()
	r.currentJobID = id
	r.mu.Unlock()
}

// Run loops until ctx is canceled. Cancellation stops new polls; the message
// in flight is finished on a detached context so shutdown never abandons a
// half-done job.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info().Msg("worker started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Str("current_job_id", r.CurrentJobID()).Msg("worker stopping")
			return ctx.Err()
		default:
		}

		payload, err := r.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.log.Info().Msg("worker stopping")
				return ctx.Err()
			}
			r.log.Error().Err(err).Msg("dequeue failed")
			continue
		}
		if payload == nil {
			continue
		}

		var msg adapter.JobMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			r.log.Warn().Str("raw", truncate(string(payload), 100)).Msg("dropping malformed job message")
			continue
		}
		if msg.JobID == "" || msg.JobType == "" {
			r.log.Warn().RawJSON("payload", payload).Msg("dropping job message with missing fields")
			continue
		}

		r.setCurrentJob(msg.JobID)
		r.handleMessage(context.WithoutCancel(ctx), msg)
		r.setCurrentJob("")
	}
}

func (r *Runner) handleMessage(ctx context.Context, msg adapter.JobMessage) {
	log := r.log.With().Str("job_id", msg.JobID).Str("job_type", msg.JobType).Logger()

	jobType, ok := model.ParseJobType(msg.JobType)
	if !ok {
		log.Warn().Msg("dropping message with unknown job type")
		return
	}
	handler, ok := r.handlers[jobType]
	if !ok {
		log.Warn().Msg("no handler for job type")
		return
	}

	start := time.Now()
	var finalStatus model.JobStatus

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		job, err := r.jobRepo.FindByID(ctx, tx, msg.JobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				log.Warn().Msg("dropping message for missing job")
				return nil
			}
			return err
		}
		if job.Status == model.JobStatusSucceeded {
			log.Info().Msg("job already succeeded, dropping message")
			return nil
		}

		report, err := r.reportRepo.FindByID(ctx, tx, job.ReportID)
		if err != nil {
			return err
		}

		log.Info().Int("attempt", job.Attempts+1).Msg("job started")

		if herr := handler.Run(ctx, tx, job, report); herr != nil {
			job.Status = model.JobStatusFailed
			job.SetError(classify(herr))
			if err := r.jobRepo.Update(ctx, tx, job); err != nil {
				return err
			}
			log.Warn().Err(herr).Msg("job failed")
		}
		finalStatus = job.Status
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("job transaction failed")
		metrics.IncJobProcessed(msg.JobType, "error")
		return
	}

	if finalStatus != "" {
		metrics.IncJobProcessed(msg.JobType, string(finalStatus))
	}
	metrics.ObserveJobDuration(msg.JobType, time.Since(start).Seconds())
	log.Info().Str("status", string(finalStatus)).Dur("duration", time.Since(start)).Msg("job finished")
}

// classify builds the persisted last_error from a handler failure.
func classify(err error) string {
	var jerr *JobError
	if !errors.As(err, &jerr) {
		return err.Error()
	}
	switch jerr.Kind {
	case JobErrorTimeout:
		return fmt.Sprintf("Timeout: %v", jerr.Err)
	case JobErrorProvider:
		return jerr.Err.Error()
	default:
		return fmt.Sprintf("Internal error: %v", jerr.Err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
