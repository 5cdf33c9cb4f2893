package backfill

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fortuna/courtside/internal/ingest/bref"
	"github.com/fortuna/courtside/internal/store"
)

// Importer lists and imports box score pages.
type Importer interface {
	GameIDsOn(ctx context.Context, date time.Time) ([]string, error)
	ImportGame(ctx context.Context, gameID string, opts bref.ParseOptions) (*store.ImportedGame, error)
}

// Runner executes backfill specs using the box score importer.
type Runner struct {
	importer Importer
	known    *KnownGames
}

// NewRunner constructs a runner. known may be nil, in which case date
// jobs re-import every listed game.
func NewRunner(importer Importer, known *KnownGames) *Runner {
	return &Runner{
		importer: importer,
		known:    known,
	}
}

// Run executes the job spec, reporting progress via the Reporter if provided.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) (Result, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	reporter.OnJobStart(spec)

	var res Result
	if spec.DryRun {
		reporter.OnProgress("Dry-run mode: no data will be written", 0, 0)
		reporter.OnJobComplete()
		return res, nil
	}

	opts := bref.ParseOptions{Season: spec.SeasonID}

	switch spec.Type {
	case JobTypeGame:
		if len(spec.GameIDs) == 0 {
			return res, fmt.Errorf("no game IDs provided for job type 'game'")
		}
		total := len(spec.GameIDs)
		res.Listed = total
		for idx, gameID := range spec.GameIDs {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			reporter.OnProgress(fmt.Sprintf("Processing game %s (%d/%d)", gameID, idx+1, total), idx, total)
			if err := r.importOne(ctx, gameID, opts, reporter); err != nil {
				return res, err
			}
			res.Imported++
			reporter.OnProgress(fmt.Sprintf("✓ Game %s complete", gameID), idx+1, total)
		}
	case JobTypeSeason, JobTypeDateRange:
		dates := enumerateDates(spec.Start, spec.End)
		if len(dates) == 0 {
			reporter.OnProgress("No dates to process", 0, 0)
			break
		}

		total := len(dates)
		for idx, date := range dates {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			reporter.OnDateStart(date, idx, total)

			ids, err := r.importer.GameIDsOn(ctx, date)
			if err != nil {
				reporter.OnJobError(err)
				return res, err
			}
			res.Listed += len(ids)

			todo := ids
			if r.known != nil {
				if todo, err = r.known.Missing(ctx, ids); err != nil {
					reporter.OnJobError(err)
					return res, err
				}
			}
			for _, id := range ids {
				if !slices.Contains(todo, id) {
					res.Skipped++
					reporter.OnGameSkipped(id)
				}
			}

			for _, gameID := range todo {
				if err := r.importOne(ctx, gameID, opts, reporter); err != nil {
					return res, err
				}
				res.Imported++
			}

			reporter.OnProgress(fmt.Sprintf("Processed %s (%d games)", date.Format("Jan 2, 2006"), len(todo)), idx+1, total)
		}
	default:
		return res, fmt.Errorf("unsupported job type %s", spec.Type)
	}

	reporter.OnJobComplete()
	return res, nil
}

func (r *Runner) importOne(ctx context.Context, gameID string, opts bref.ParseOptions, reporter Reporter) error {
	if _, err := r.importer.ImportGame(ctx, gameID, opts); err != nil {
		reporter.OnJobError(err)
		return err
	}
	if r.known != nil {
		r.known.Add(gameID)
	}
	reporter.OnGameProcessed(gameID)
	return nil
}

func enumerateDates(start, end time.Time) []time.Time {
	if end.Before(start) {
		start, end = end, start
	}

	var dates []time.Time
	current := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	final := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	for !current.After(final) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 1)
	}

	return dates
}

type nopReporter struct{}

func (nopReporter) OnJobStart(JobSpec) {}
func (nopReporter) OnDateStart(time.Time, int, int) {}
func (nopReporter) OnGameProcessed(string) {}
func (nopReporter) OnGameSkipped(string) {}
func (nopReporter) OnProgress(string, int, int) {}
func (nopReporter) OnJobComplete() {}
func (nopReporter) OnJobError(error) {}
