package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fortuna/courtside/internal/backfill"
	"github.com/fortuna/courtside/internal/teams"
)

// Warmer is the reference data kept hot in the cache.
type Warmer interface {
	Invalidate(ctx context.Context)
	Teams(ctx context.Context) ([]teams.Team, error)
	Seasons(ctx context.Context) ([]string, error)
}

// Enqueuer accepts import jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, req backfill.Request) (*backfill.Job, error)
}

// Config holds scheduler configuration
type Config struct {
	WarmInterval       time.Duration // Default: 10m
	DailyImportHour    int           // Default: 6 (6 AM UTC)
	EnableCacheWarming bool          // Default: true
	EnableDailyImport  bool          // Default: true
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		WarmInterval:       10 * time.Minute,
		DailyImportHour:    6,
		EnableCacheWarming: true,
		EnableDailyImport:  true,
	}
}

// Orchestrator runs the periodic tasks: reference cache warming and the
// daily import of the previous day's games.
type Orchestrator struct {
	warmer   Warmer
	enqueuer Enqueuer
	config   *Config
	logger   *log.Logger
	now      func() time.Time

	mu       sync.Mutex
	lastWarm time.Time
	lastJob  string
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewOrchestrator creates a new scheduler orchestrator. enqueuer may be
// nil when the import worker is disabled.
func NewOrchestrator(warmer Warmer, enqueuer Enqueuer, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.WarmInterval <= 0 {
		config.WarmInterval = 10 * time.Minute
	}
	return &Orchestrator{
		warmer:   warmer,
		enqueuer: enqueuer,
		config:   config,
		logger:   log.New(log.Writer(), "[scheduler] ", log.LstdFlags),
		now:      time.Now,
	}
}

// Start begins all scheduled tasks and blocks until ctx ends or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	o.logger.Printf("Cache warming: %v (interval: %v)", o.config.EnableCacheWarming, o.config.WarmInterval)
	o.logger.Printf("Daily import: %v (at %02d:00 UTC)", o.config.EnableDailyImport && o.enqueuer != nil, o.config.DailyImportHour)

	ctx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()

	if o.config.EnableCacheWarming {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.runCacheWarming(ctx)
		}()
	}

	if o.config.EnableDailyImport && o.enqueuer != nil {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.runDailyImport(ctx)
		}()
	}

	<-ctx.Done()
	o.wg.Wait()
	o.logger.Println("Scheduler orchestrator stopped")
}

func (o *Orchestrator) runCacheWarming(ctx context.Context) {
	ticker := time.NewTicker(o.config.WarmInterval)
	defer ticker.Stop()

	o.Warm(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Warm(ctx)
		}
	}
}

// Warm drops and reloads the cached reference lists.
func (o *Orchestrator) Warm(ctx context.Context) {
	o.warmer.Invalidate(ctx)

	list, err := o.warmer.Teams(ctx)
	if err != nil {
		o.logger.Printf("⚠️  warming teams: %v", err)
		return
	}
	seasons, err := o.warmer.Seasons(ctx)
	if err != nil {
		o.logger.Printf("⚠️  warming seasons: %v", err)
		return
	}

	o.mu.Lock()
	o.lastWarm = o.now()
	o.mu.Unlock()
	o.logger.Printf("✓ Cache warm: %d teams, %d seasons", len(list), len(seasons))
}

func (o *Orchestrator) runDailyImport(ctx context.Context) {
	for {
		wait := o.untilNextImport()
		o.logger.Printf("Next daily import in %v", wait.Round(time.Second))

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			if _, err := o.EnqueueDaily(ctx); err != nil {
				o.logger.Printf("❌ Daily import failed: %v", err)
			}
		}
	}
}

func (o *Orchestrator) untilNextImport() time.Duration {
	now := o.now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), o.config.DailyImportHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// EnqueueDaily queues an import of yesterday's games.
func (o *Orchestrator) EnqueueDaily(ctx context.Context) (*backfill.Job, error) {
	y := o.now().UTC().AddDate(0, 0, -1)
	day := time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC)

	job, err := o.enqueuer.Enqueue(ctx, backfill.Request{StartDate: &day, EndDate: &day})
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.lastJob = job.ID
	o.mu.Unlock()
	o.logger.Printf("✓ Queued import of %s (job %s)", day.Format("2006-01-02"), job.ID)
	return job, nil
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := map[string]interface{}{
		"cache_warming_enabled": o.config.EnableCacheWarming,
		"warm_interval":         o.config.WarmInterval.String(),
		"daily_import_enabled":  o.config.EnableDailyImport && o.enqueuer != nil,
		"daily_import_hour":     o.config.DailyImportHour,
	}
	if !o.lastWarm.IsZero() {
		status["last_warm"] = o.lastWarm
	}
	if o.lastJob != "" {
		status["last_daily_job"] = o.lastJob
	}
	return status
}
