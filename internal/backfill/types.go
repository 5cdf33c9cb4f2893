package backfill

import (
	"time"

	json "github.com/goccy/go-json"
)

// JobType enumerates the supported import job variants.
type JobType string

const (
	JobTypeSeason    JobType = "season"
	JobTypeDateRange JobType = "date_range"
	JobTypeGame      JobType = "game"
)

// JobStatus is the lifecycle state of a job. Jobs never leave the
// terminal states; interrupted running jobs go back to queued.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// EventKind labels a row in a job's event log.
type EventKind string

const (
	EventQueued   EventKind = "queued"
	EventImported EventKind = "imported"
	EventSkipped  EventKind = "skipped"
	EventFailed   EventKind = "failed"
)

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Days returns every day in the range.
func (d DateRange) Days() []time.Time { return enumerateDates(d.From, d.To) }

func (d DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		From string `json:"from"`
		To   string `json:"to"`
	}{d.From.Format("2006-01-02"), d.To.Format("2006-01-02")})
}

// Job is one queued import, as stored in import_jobs.
type Job struct {
	ID      string   `json:"id"`
	Kind    JobType  `json:"kind"`
	Season  string   `json:"season,omitempty"`
	GameIDs []string `json:"game_ids,omitempty"`
	DryRun  bool     `json:"dry_run,omitempty"`

	// Window is the season's full calendar; Dates is the part of it (or
	// the requested range) the worker walks.
	Window *DateRange `json:"season_window,omitempty"`
	Dates  *DateRange `json:"dates,omitempty"`

	Status     JobStatus `json:"status"`
	Message    string    `json:"message,omitempty"`
	StepsDone  int       `json:"steps_done"`
	StepsTotal int       `json:"steps_total"`
	Result     Result    `json:"result"`
	Error      string    `json:"error,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Copy returns a copy that shares no mutable state with j.
func (j *Job) Copy() *Job {
	if j == nil {
		return nil
	}
	cpy := *j
	cpy.GameIDs = append([]string(nil), j.GameIDs...)
	if j.Window != nil {
		w := *j.Window
		cpy.Window = &w
	}
	if j.Dates != nil {
		d := *j.Dates
		cpy.Dates = &d
	}
	return &cpy
}

// Outcome is what the worker records when a job stops running.
type Outcome struct {
	Status  JobStatus
	Message string
	Result  Result
	Err     error
}

// JobSpec describes the work to be performed by the runner.
type JobSpec struct {
	Type     JobType
	SeasonID string
	Start    time.Time
	End      time.Time
	GameIDs  []string
	DryRun   bool
}

// Result counts what a run did. Listed is every game id seen on the
// schedule pages (or requested); Skipped were already stored.
type Result struct {
	Listed   int `json:"listed"`
	Skipped  int `json:"skipped"`
	Imported int `json:"imported"`
}

func (r Result) add(o Result) Result {
	return Result{
		Listed:   r.Listed + o.Listed,
		Skipped:  r.Skipped + o.Skipped,
		Imported: r.Imported + o.Imported,
	}
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnDateStart(date time.Time, index int, total int)
	OnGameProcessed(gameID string)
	OnGameSkipped(gameID string)
	OnProgress(message string, current int, total int)
	OnJobComplete()
	OnJobError(err error)
}

// StatusSummary is the worker state returned to API callers. Totals sums
// the results of the finished jobs in Recent.
type StatusSummary struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Active  *Job   `json:"active_job,omitempty"`
	Recent  []*Job `json:"history"`
	Totals  Result `json:"totals"`
}
