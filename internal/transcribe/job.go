// Package transcribe runs speech-to-text jobs as an explicit submitted, polling, terminal
// state machine with a caller-controlled deadline.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// JobState is the caller-visible state of a transcription job.
type JobState string

const (
	StateSubmitted JobState = "submitted"
	StatePolling   JobState = "polling"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// Terminal reports whether no further transitions happen from s.
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// RemoteStatus is what a provider reports for a submitted job.
type RemoteStatus int

const (
	RemotePending RemoteStatus = iota
	RemoteReady
	RemoteFailed
)

// Request is one audio clip to transcribe.
type Request struct {
	Name     string
	Audio    []byte
	MIMEType string
	Language string
}

// Service is a speech-to-text provider with asynchronous jobs.
type Service interface {
	Start(ctx context.Context, req Request) (jobID string, err error)
	Status(ctx context.Context, jobID string) (RemoteStatus, error)
	Fetch(ctx context.Context, jobID string, language string) (string, error)
	Delete(ctx context.Context, jobID string) error
}

// Job records the progress of one transcription.
type Job struct {
	ID         string
	State      JobState
	Polls      int
	Transcript string
	Err        error
}

func (j *Job) transition(to JobState) {
	slog.Debug("transcription job transition", "job", j.ID, "from", j.State, "to", to)
	j.State = to
}

// Runner drives jobs on a Service.
type Runner struct {
	Service  Service
	Interval time.Duration
	// Timeout bounds one job end to end. Zero leaves only the caller's context.
	Timeout time.Duration
}

// DefaultInterval is the poll interval used when Runner.Interval is zero.
const DefaultInterval = 2 * time.Second

// Run submits req and polls until the job is terminal or ctx ends. The remote job is
// deleted once started, whatever the outcome. On failure the returned Job carries the
// final state alongside the error.
func (r *Runner) Run(ctx context.Context, req Request) (*Job, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	id, err := r.Service.Start(ctx, req)
	if err != nil {
		job := &Job{State: StateFailed, Err: err}
		return job, &JobError{State: StateFailed, Message: "failed to start job", Cause: err}
	}
	job := &Job{ID: id, State: StateSubmitted}

	defer func() {
		delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := r.Service.Delete(delCtx, id); err != nil {
			slog.Warn("failed to delete transcription job", "job", id, "error", err)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := r.Service.Status(ctx, id)
		if err != nil {
			return r.fail(job, "failed to get job status", err)
		}

		switch status {
		case RemoteReady:
			text, err := r.Service.Fetch(ctx, id, req.Language)
			if err != nil {
				return r.fail(job, "failed to fetch transcript", err)
			}
			job.Transcript = text
			job.transition(StateCompleted)
			return job, nil
		case RemoteFailed:
			return r.fail(job, "transcription failed", nil)
		}

		if job.State == StateSubmitted {
			job.transition(StatePolling)
		}
		job.Polls++

		select {
		case <-ctx.Done():
			return r.fail(job, "gave up waiting for transcript", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Runner) fail(job *Job, msg string, cause error) (*Job, error) {
	job.transition(StateFailed)
	job.Err = cause
	if cause == nil {
		job.Err = errors.New(msg)
	}
	return job, &JobError{JobID: job.ID, State: StateFailed, Message: msg, Cause: cause}
}

// JobError reports a job that ended in the failed state.
type JobError struct {
	JobID   string
	State   JobState
	Message string
	Cause   error
}

func (e *JobError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transcription job %s: %s: %v", e.JobID, e.Message, e.Cause)
	}
	return fmt.Sprintf("transcription job %s: %s", e.JobID, e.Message)
}

func (e *JobError) Unwrap() error {
	return e.Cause
}
