package backfill

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fortuna/courtside/internal/store"
)

const jobColumns = `id, kind, season, season_start, season_end, date_from, date_to,
	game_ids, dry_run, status, message, steps_done, steps_total,
	games_listed, games_skipped, games_imported, error,
	created_at, updated_at, started_at, finished_at`

// Repository persists import jobs and their event log in Postgres.
type Repository struct {
	db *store.Database
}

// NewRepository constructs a Repository.
func NewRepository(db *store.Database) *Repository {
	return &Repository{db: db}
}

// Create inserts a queued job and returns the stored row.
func (r *Repository) Create(ctx context.Context, job *Job) (*Job, error) {
	windowFrom, windowTo := rangeArgs(job.Window)
	from, to := rangeArgs(job.Dates)

	row := r.db.DB().QueryRowContext(ctx, `
		INSERT INTO import_jobs (
			id, kind, season, season_start, season_end, date_from, date_to,
			game_ids, dry_run, status, message, steps_total
		)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+jobColumns,
		job.ID, job.Kind, job.Season, windowFrom, windowTo, from, to,
		pq.StringArray(job.GameIDs), job.DryRun, job.Status, job.Message, job.StepsTotal,
	)

	stored, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return stored, nil
}

// Claim marks the oldest queued job running and returns it, or nil when
// the queue is empty. Concurrent workers never claim the same row.
func (r *Repository) Claim(ctx context.Context) (*Job, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		UPDATE import_jobs
		SET status = 'running',
			message = 'Starting',
			started_at = COALESCE(started_at, NOW()),
			updated_at = NOW()
		WHERE id = (
			SELECT id FROM import_jobs
			WHERE status = 'queued'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return job, nil
}

// Requeue puts jobs left running by a previous process back in the queue.
func (r *Repository) Requeue(ctx context.Context) (int, error) {
	res, err := r.db.DB().ExecContext(ctx, `
		UPDATE import_jobs
		SET status = 'queued',
			message = 'Requeued after restart',
			updated_at = NOW()
		WHERE status = 'running'
	`)
	if err != nil {
		return 0, fmt.Errorf("requeue jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Progress updates the step counters and message of a running job.
func (r *Repository) Progress(ctx context.Context, jobID string, done, total int, message string) error {
	_, err := r.db.DB().ExecContext(ctx, `
		UPDATE import_jobs
		SET steps_done = $2, steps_total = $3, message = $4, updated_at = NOW()
		WHERE id = $1
	`, jobID, done, total, message)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return nil
}

// Finish records the final status and game counts of a job.
func (r *Repository) Finish(ctx context.Context, jobID string, out Outcome) error {
	var errText sql.NullString
	if out.Err != nil {
		errText = sql.NullString{String: out.Err.Error(), Valid: true}
	}

	_, err := r.db.DB().ExecContext(ctx, `
		UPDATE import_jobs
		SET status = $2,
			message = $3,
			error = $4,
			games_listed = $5,
			games_skipped = $6,
			games_imported = $7,
			finished_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
	`, jobID, out.Status, out.Message, errText,
		out.Result.Listed, out.Result.Skipped, out.Result.Imported)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// Event appends to a job's event log. gameID may be empty.
func (r *Repository) Event(ctx context.Context, jobID string, kind EventKind, gameID, message string) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO import_job_events (job_id, kind, game_id, message)
		VALUES ($1, $2, NULLIF($3, ''), $4)
	`, jobID, kind, gameID, message)
	if err != nil {
		return fmt.Errorf("insert job event: %w", err)
	}
	return nil
}

// Active returns the running job, or nil.
func (r *Repository) Active(ctx context.Context) (*Job, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM import_jobs
		WHERE status = 'running'
		ORDER BY started_at DESC
		LIMIT 1`)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active job: %w", err)
	}
	return job, nil
}

// Get returns one job by id.
func (r *Repository) Get(ctx context.Context, jobID string) (*Job, error) {
	row := r.db.DB().QueryRowContext(ctx, `SELECT `+jobColumns+` FROM import_jobs WHERE id = $1`, jobID)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Recent returns the newest jobs first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*Job, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM import_jobs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func rangeArgs(d *DateRange) (sql.NullTime, sql.NullTime) {
	if d == nil {
		return sql.NullTime{}, sql.NullTime{}
	}
	return sql.NullTime{Time: d.From, Valid: true}, sql.NullTime{Time: d.To, Valid: true}
}

func rangeOf(from, to sql.NullTime) *DateRange {
	if !from.Valid || !to.Valid {
		return nil
	}
	return &DateRange{From: truncateDate(from.Time), To: truncateDate(to.Time)}
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job                      Job
		season, message, errText sql.NullString
		windowFrom, windowTo     sql.NullTime
		from, to                 sql.NullTime
		started, finished        sql.NullTime
		gameIDs                  pq.StringArray
	)

	err := scanner.Scan(
		&job.ID, &job.Kind, &season, &windowFrom, &windowTo, &from, &to,
		&gameIDs, &job.DryRun, &job.Status, &message, &job.StepsDone, &job.StepsTotal,
		&job.Result.Listed, &job.Result.Skipped, &job.Result.Imported, &errText,
		&job.CreatedAt, &job.UpdatedAt, &started, &finished,
	)
	if err != nil {
		return nil, err
	}

	job.Season = season.String
	job.Message = message.String
	job.Error = errText.String
	job.GameIDs = []string(gameIDs)
	job.Window = rangeOf(windowFrom, windowTo)
	job.Dates = rangeOf(from, to)
	if started.Valid {
		job.StartedAt = &started.Time
	}
	if finished.Valid {
		job.FinishedAt = &finished.Time
	}
	return &job, nil
}
