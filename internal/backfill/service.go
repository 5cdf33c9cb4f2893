package backfill

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStore persists jobs and their events.
type JobStore interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	Get(ctx context.Context, jobID string) (*Job, error)
	Claim(ctx context.Context) (*Job, error)
	Requeue(ctx context.Context) (int, error)
	Progress(ctx context.Context, jobID string, done, total int, message string) error
	Finish(ctx context.Context, jobID string, out Outcome) error
	Event(ctx context.Context, jobID string, kind EventKind, gameID, message string) error
	Active(ctx context.Context) (*Job, error)
	Recent(ctx context.Context, limit int) ([]*Job, error)
}

// Request represents an import request from the API or the scheduler.
type Request struct {
	SeasonID  string
	StartDate *time.Time
	EndDate   *time.Time
	GameIDs   []string
	DryRun    bool
}

// DeriveType infers the job type based on populated fields.
func (r Request) DeriveType() (JobType, error) {
	if len(r.GameIDs) > 0 {
		return JobTypeGame, nil
	}
	if r.StartDate != nil && r.EndDate != nil {
		return JobTypeDateRange, nil
	}
	if r.SeasonID != "" {
		return JobTypeSeason, nil
	}
	return "", fmt.Errorf("unable to determine job type from request")
}

// Service queues import jobs in Postgres and runs them one at a time.
type Service struct {
	repo   JobStore
	runner *Runner

	historyLimit int
	pollInterval time.Duration
	now          func() time.Time

	mu         sync.Mutex
	onComplete []func(job *Job, res Result)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewService constructs a Service. Call Start to launch the worker.
func NewService(repo JobStore, runner *Runner, logger *log.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	if logger == nil {
		logger = log.New(log.Writer(), "[backfill] ", log.LstdFlags)
	}

	return &Service{
		repo:         repo,
		runner:       runner,
		historyLimit: 10,
		pollInterval: 3 * time.Second,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
	}
}

// OnComplete registers fn to run after each successful job.
func (s *Service) OnComplete(fn func(job *Job, res Result)) {
	s.mu.Lock()
	s.onComplete = append(s.onComplete, fn)
	s.mu.Unlock()
}

// Start requeues interrupted jobs and launches the worker loop.
func (s *Service) Start() {
	n, err := s.repo.Requeue(s.ctx)
	if err != nil {
		s.logger.Printf("⚠️  failed to requeue jobs: %v", err)
	} else if n > 0 {
		s.logger.Printf("requeued %d interrupted job(s)", n)
	}

	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops the worker and waits for the current job to return.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue validates req and stores it as a queued job. Season jobs keep
// the season's full window and walk only the days up to today.
func (s *Service) Enqueue(ctx context.Context, req Request) (*Job, error) {
	kind, err := req.DeriveType()
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:      uuid.NewString(),
		Kind:    kind,
		Season:  req.SeasonID,
		DryRun:  req.DryRun,
		Status:  JobStatusQueued,
		Message: "Queued",
	}

	switch kind {
	case JobTypeGame:
		job.GameIDs = append([]string(nil), req.GameIDs...)
		job.StepsTotal = len(job.GameIDs)
	case JobTypeSeason:
		start, end, err := SeasonWindow(req.SeasonID)
		if err != nil {
			return nil, err
		}
		job.Window = &DateRange{From: start, To: end}
		if today := truncateDate(s.now()); end.After(today) {
			end = today
		}
		if end.Before(start) {
			return nil, fmt.Errorf("season %s has not started", req.SeasonID)
		}
		job.Dates = &DateRange{From: start, To: end}
	case JobTypeDateRange:
		from, to := truncateDate(*req.StartDate), truncateDate(*req.EndDate)
		if to.Before(from) {
			from, to = to, from
		}
		job.Dates = &DateRange{From: from, To: to}
	}
	if job.Dates != nil {
		job.StepsTotal = len(job.Dates.Days())
	}

	stored, err := s.repo.Create(ctx, job)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Event(ctx, stored.ID, EventQueued, "", job.Message); err != nil {
		s.logger.Printf("⚠️  job %s: %v", stored.ID, err)
	}
	return stored, nil
}

// GetJob returns one job.
func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.Get(ctx, jobID)
}

// GetStatus returns the running job, recent history and the game counts
// summed over the finished jobs in that history.
func (s *Service) GetStatus(ctx context.Context) (*StatusSummary, error) {
	active, err := s.repo.Active(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.Recent(ctx, s.historyLimit)
	if err != nil {
		return nil, err
	}

	summary := &StatusSummary{
		Status:  "idle",
		Message: "No active jobs",
		Active:  active,
		Recent:  recent,
	}
	if summary.Recent == nil {
		summary.Recent = []*Job{}
	}
	if active != nil {
		summary.Status = string(active.Status)
		summary.Message = active.Message
	}
	for _, job := range recent {
		if job.Status == JobStatusCompleted || job.Status == JobStatusFailed {
			summary.Totals = summary.Totals.add(job.Result)
		}
	}
	return summary, nil
}

func (s *Service) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		job, err := s.repo.Claim(s.ctx)
		if err != nil {
			s.logger.Printf("claim job error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				continue
			}
		}

		s.executeJob(job)
	}
}

func (s *Service) executeJob(job *Job) {
	spec, err := specFor(job)
	if err != nil {
		s.logger.Printf("❌ invalid job %s: %v", job.ID, err)
		s.finish(job.ID, Outcome{Status: JobStatusFailed, Message: "Invalid job", Err: err})
		return
	}

	reporter := &jobReporter{
		ctx:   s.ctx,
		repo:  s.repo,
		jobID: job.ID,
		total: job.StepsTotal,
	}

	s.logger.Printf("running %s job %s", job.Kind, job.ID)
	res, err := s.runner.Run(s.ctx, spec, reporter)
	if err != nil {
		s.logger.Printf("⚠️  job %s failed after %d imported: %v", job.ID, res.Imported, err)
		s.finish(job.ID, Outcome{
			Status:  JobStatusFailed,
			Message: fmt.Sprintf("Failed: %d imported, %d already stored", res.Imported, res.Skipped),
			Result:  res,
			Err:     err,
		})
		return
	}

	s.finish(job.ID, Outcome{
		Status:  JobStatusCompleted,
		Message: fmt.Sprintf("Completed: %d imported, %d already stored", res.Imported, res.Skipped),
		Result:  res,
	})
	s.logger.Printf("✓ job %s: %d listed, %d imported, %d skipped", job.ID, res.Listed, res.Imported, res.Skipped)

	s.mu.Lock()
	hooks := append([]func(*Job, Result){}, s.onComplete...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(job, res)
	}
}

// finish uses a fresh context so the outcome is stored during shutdown.
func (s *Service) finish(jobID string, out Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Finish(ctx, jobID, out); err != nil {
		s.logger.Printf("❌ job %s: %v", jobID, err)
	}
}

func specFor(job *Job) (JobSpec, error) {
	spec := JobSpec{
		Type:     job.Kind,
		SeasonID: job.Season,
		DryRun:   job.DryRun,
	}

	switch job.Kind {
	case JobTypeGame:
		if len(job.GameIDs) == 0 {
			return spec, fmt.Errorf("game job has no game ids")
		}
		spec.GameIDs = job.GameIDs
	case JobTypeSeason, JobTypeDateRange:
		if job.Dates == nil {
			return spec, fmt.Errorf("%s job has no dates", job.Kind)
		}
		spec.Start = job.Dates.From
		spec.End = job.Dates.To
	default:
		return spec, fmt.Errorf("unknown job type %s", job.Kind)
	}
	return spec, nil
}

// jobReporter mirrors runner progress into the job row and event log.
type jobReporter struct {
	ctx   context.Context
	repo  JobStore
	jobID string
	total int
}

func (r *jobReporter) OnJobStart(JobSpec) {
	_ = r.repo.Progress(r.ctx, r.jobID, 0, r.total, "Starting")
}

func (r *jobReporter) OnDateStart(date time.Time, index int, total int) {
	msg := fmt.Sprintf("Processing %s (%d/%d)", date.Format("Jan 2, 2006"), index+1, total)
	_ = r.repo.Progress(r.ctx, r.jobID, index, valueOr(total, r.total), msg)
}

func (r *jobReporter) OnGameProcessed(gameID string) {
	_ = r.repo.Event(r.ctx, r.jobID, EventImported, gameID, "")
}

func (r *jobReporter) OnGameSkipped(gameID string) {
	_ = r.repo.Event(r.ctx, r.jobID, EventSkipped, gameID, "already stored")
}

func (r *jobReporter) OnProgress(message string, current int, total int) {
	_ = r.repo.Progress(r.ctx, r.jobID, current, valueOr(total, r.total), message)
}

func (r *jobReporter) OnJobComplete() {
	_ = r.repo.Progress(r.ctx, r.jobID, r.total, r.total, "Finishing")
}

func (r *jobReporter) OnJobError(err error) {
	_ = r.repo.Event(r.ctx, r.jobID, EventFailed, "", err.Error())
}

func valueOr(val, fallback int) int {
	if val > 0 {
		return val
	}
	return fallback
}

// SeasonWindow returns the dates a season's games fall in. It accepts
// "2023-24" or the starting year alone.
func SeasonWindow(seasonID string) (time.Time, time.Time, error) {
	first, _, _ := strings.Cut(seasonID, "-")
	startYear, err := strconv.Atoi(first)
	if err != nil || len(first) != 4 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid season %q", seasonID)
	}

	start := time.Date(startYear, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(startYear+1, time.June, 30, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
