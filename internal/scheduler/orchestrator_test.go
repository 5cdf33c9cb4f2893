package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/backfill"
	"github.com/fortuna/courtside/internal/teams"
)

type fakeWarmer struct {
	invalidations int
	teamsErr      error
}

func (f *fakeWarmer) Invalidate(context.Context) { f.invalidations++ }

func (f *fakeWarmer) Teams(context.Context) ([]teams.Team, error) {
	if f.teamsErr != nil {
		return nil, f.teamsErr
	}
	return []teams.Team{{Name: "Boston Celtics", Abbreviation: "BOS"}}, nil
}

func (f *fakeWarmer) Seasons(context.Context) ([]string, error) {
	return []string{"2023-24"}, nil
}

type fakeEnqueuer struct {
	reqs []backfill.Request
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, req backfill.Request) (*backfill.Job, error) {
	f.reqs = append(f.reqs, req)
	return &backfill.Job{ID: "job-1", Kind: backfill.JobTypeDateRange}, nil
}

func TestWarm(t *testing.T) {
	w := &fakeWarmer{}
	o := NewOrchestrator(w, nil, nil)

	o.Warm(context.Background())
	assert.Equal(t, 1, w.invalidations)
	assert.Contains(t, o.GetStatus(), "last_warm")
	assert.Equal(t, false, o.GetStatus()["daily_import_enabled"])

	w.teamsErr = errors.New("db down")
	o2 := NewOrchestrator(w, nil, nil)
	o2.Warm(context.Background())
	assert.NotContains(t, o2.GetStatus(), "last_warm")
}

func TestEnqueueDaily(t *testing.T) {
	e := &fakeEnqueuer{}
	o := NewOrchestrator(&fakeWarmer{}, e, nil)
	o.now = func() time.Time { return time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC) }

	job, err := o.EnqueueDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)

	require.Len(t, e.reqs, 1)
	want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, *e.reqs[0].StartDate)
	assert.Equal(t, want, *e.reqs[0].EndDate)
	assert.Equal(t, "job-1", o.GetStatus()["last_daily_job"])
}

func TestUntilNextImport(t *testing.T) {
	o := NewOrchestrator(&fakeWarmer{}, nil, &Config{DailyImportHour: 6, WarmInterval: time.Minute})

	o.now = func() time.Time { return time.Date(2024, 3, 1, 5, 30, 0, 0, time.UTC) }
	assert.Equal(t, 30*time.Minute, o.untilNextImport())

	o.now = func() time.Time { return time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC) }
	assert.Equal(t, 24*time.Hour, o.untilNextImport())
}

func TestStartStop(t *testing.T) {
	w := &fakeWarmer{}
	o := NewOrchestrator(w, nil, &Config{WarmInterval: time.Hour, EnableCacheWarming: true})

	done := make(chan struct{})
	go func() {
		o.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, ok := o.GetStatus()["last_warm"]
		return ok
	}, time.Second, 10*time.Millisecond)

	o.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
