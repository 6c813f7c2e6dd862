package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/cache"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/etl"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/ingest/nba"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/publisher"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store/repository"
)

// Orchestrator runs the full pipeline on a daily schedule: ingest recent
// games, normalize them, rebuild the stat snapshots, publish the results.
type Orchestrator struct {
	config    *Config
	ingester  *nba.Ingester
	pipeline  *etl.Pipeline
	cache     *cache.RedisCache
	publisher *publisher.RedisPublisher
	cancel    context.CancelFunc
}

// Config holds scheduler configuration
type Config struct {
	DailyRunHour   int           // Default: 4 (4 AM)
	IngestDaysBack int           // Default: 3
	MaxRetries     int           // Default: 3
	RetryDelay     time.Duration // Default: 5s
	Workers        int           // Default: 8
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		DailyRunHour:   4,
		IngestDaysBack: 3,
		MaxRetries:     3,
		RetryDelay:     5 * time.Second,
		Workers:        8,
	}
}

// NewOrchestrator creates a scheduler over the shared database and Redis
// connections. cache may be nil when Redis is disabled.
func NewOrchestrator(db *store.Database, redisCache *cache.RedisCache, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}

	pipeline := etl.NewPipeline(
		repository.NewRawGameRepository(db),
		repository.NewGameRepository(db),
		repository.NewTeamStatsRepository(db),
		config.Workers,
	)

	o := &Orchestrator{
		config:   config,
		ingester: nba.NewIngester(db),
		pipeline: pipeline,
		cache:    redisCache,
	}
	if redisCache != nil {
		o.publisher = publisher.NewRedisPublisher(redisCache.Client())
	}

	return o
}

// Start blocks running the daily schedule until the context is cancelled
func (o *Orchestrator) Start(ctx context.Context) {
	log.Printf("[scheduler] Daily run at %02d:00, ingesting %d days back",
		o.config.DailyRunHour, o.config.IngestDaysBack)

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	consecutiveErrors := 0
	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), o.config.DailyRunHour, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}

		wait := time.Until(nextRun)
		log.Printf("[scheduler] Next run: %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), wait.Round(time.Second))

		select {
		case <-ctx.Done():
			log.Println("[scheduler] Stopped")
			return
		case <-time.After(wait):
			if err := o.runWithRetry(ctx); err != nil {
				consecutiveErrors++
				log.Printf("[scheduler] ⚠ Run failed (%d consecutive): %v", consecutiveErrors, err)
				if consecutiveErrors >= 3 {
					// Something structural is wrong; back off an extra hour
					// so the logs are not a wall of identical failures
					log.Println("[scheduler] ⚠ High failure rate, backing off an extra hour")
					select {
					case <-ctx.Done():
						return
					case <-time.After(time.Hour):
					}
				}
			} else {
				consecutiveErrors = 0
			}
		}
	}
}

// Stop cancels the schedule loop
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	log.Println("[scheduler] ✓ Stopped")
}

func (o *Orchestrator) runWithRetry(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		err = o.RunOnce(ctx)
		if err == nil {
			return nil
		}

		log.Printf("[scheduler] ⚠ Attempt %d/%d failed: %v", attempt, o.config.MaxRetries, err)
		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.RetryDelay * time.Duration(attempt)):
			}
		}
	}
	return err
}

// RunOnce executes one full pipeline pass: ingest, process, stats. Also the
// manual-trigger path for the REST API.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	start := time.Now()
	log.Println("[scheduler] ═══ Pipeline run starting ═══")

	ingestResult, err := o.ingester.IngestRecentGames(ctx, o.config.IngestDaysBack)
	if err != nil {
		return err
	}
	o.publishResult(ctx, "ingest", func(pctx context.Context) error {
		return o.publisher.PublishIngestResult(pctx, ingestResult)
	})

	processResult, err := o.pipeline.ProcessRawGames(ctx)
	if err != nil {
		return err
	}
	o.publishResult(ctx, "process", func(pctx context.Context) error {
		return o.publisher.PublishProcessResult(pctx, processResult)
	})

	statsResult, err := o.pipeline.CalculateTeamStats(ctx)
	if err != nil {
		return err
	}
	o.publishResult(ctx, "stats", func(pctx context.Context) error {
		return o.publisher.PublishStatsResult(pctx, statsResult)
	})

	if o.cache != nil {
		if err := o.cache.InvalidatePrefix(ctx, "teamstats:"); err != nil {
			log.Printf("[scheduler] ⚠ Cache invalidation failed: %v", err)
		}
	}

	log.Printf("[scheduler] ═══ Pipeline run complete in %v ═══", time.Since(start).Round(time.Second))
	return nil
}

// GetStatus returns the scheduler configuration for the status endpoint
func (o *Orchestrator) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"daily_run_hour":   o.config.DailyRunHour,
		"ingest_days_back": o.config.IngestDaysBack,
		"max_retries":      o.config.MaxRetries,
		"workers":          o.config.Workers,
	}
}

func (o *Orchestrator) publishResult(ctx context.Context, stage string, publish func(context.Context) error) {
	if o.publisher == nil {
		return
	}
	if err := publish(ctx); err != nil {
		log.Printf("[scheduler] ⚠ Failed to publish %s result: %v", stage, err)
	}
}
