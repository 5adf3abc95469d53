// internal/batch/driver.go

// Package batch drives bulk context refreshes and match recomputation
// over the entity catalogue. Failures are contained per entity: one
// broken record is logged and skipped, never aborting the whole run.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/common/logger"
	"nomad-workers/internal/common/metrics"
	"nomad-workers/internal/engine/insight"
	"nomad-workers/internal/engine/profile"
	"nomad-workers/internal/engine/quality"
	"nomad-workers/internal/engine/scoring"
	"nomad-workers/internal/models"
	"nomad-workers/internal/provider"
)

// EntitySource reads raw entity records.
type EntitySource interface {
	City(ctx context.Context, id string) (*models.City, error)
	Job(ctx context.Context, id string) (*models.Job, error)
	User(ctx context.Context, id string) (*models.User, error)
	Cities(ctx context.Context, f provider.Filter) ([]models.City, error)
	Jobs(ctx context.Context, f provider.Filter) ([]models.Job, error)
	Users(ctx context.Context, f provider.Filter) ([]models.User, error)
}

// MatchWriter persists scored matches.
type MatchWriter interface {
	Upsert(ctx context.Context, rec *models.MatchRecord) error
}

// ContextWriter persists derived contexts.
type ContextWriter interface {
	Upsert(ctx context.Context, rec *models.AiContextRecord) error
}

// Indexer mirrors contexts into the search index.
type Indexer interface {
	Index(ctx context.Context, rec *models.AiContextRecord) error
}

// Options tunes the driver's worker pool and retry behaviour.
type Options struct {
	Concurrency    int
	MaxRetries     int
	UnitTimeout    time.Duration
	RetryBaseDelay time.Duration
	ModelVersion   string
}

func (o *Options) applyDefaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.UnitTimeout <= 0 {
		o.UnitTimeout = 5 * time.Minute
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = time.Second
	}
	if o.ModelVersion == "" {
		o.ModelVersion = "rules-v1"
	}
}

// Stats summarizes one batch run.
type Stats struct {
	RunID     string
	Processed int
	Skipped   int
}

// Driver orchestrates refreshes across the source, the engine and the
// stores.
type Driver struct {
	src      EntitySource
	matches  MatchWriter
	contexts ContextWriter
	indexer  Indexer
	scorer   *scoring.Engine
	quality  *quality.Classifier
	insights *insight.Generator
	opts     Options
	logger   logger.Logger
	now      func() time.Time
}

// NewDriver wires a batch driver. indexer may be nil when search
// mirroring is disabled.
func NewDriver(
	src EntitySource,
	matches MatchWriter,
	contexts ContextWriter,
	indexer Indexer,
	scorer *scoring.Engine,
	classifier *quality.Classifier,
	opts Options,
	log logger.Logger,
) *Driver {
	opts.applyDefaults()
	return &Driver{
		src:      src,
		matches:  matches,
		contexts: contexts,
		indexer:  indexer,
		scorer:   scorer,
		quality:  classifier,
		insights: insight.NewGenerator(),
		opts:     opts,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RefreshContexts recomputes the derived context for every active
// entity of one kind. Entities are processed by a bounded worker pool;
// retryable failures are retried with backoff, then the entity is
// skipped and counted.
func (d *Driver) RefreshContexts(ctx context.Context, kind profile.Kind) (*Stats, error) {
	unit := "context_refresh_" + string(kind)
	runID := uuid.NewString()
	log := d.logger.WithFields(map[string]interface{}{"runId": runID, "unit": unit})

	entities, err := d.collectEntities(ctx, kind)
	if err != nil {
		metrics.BatchUnitsFailed.WithLabelValues(unit, string(errors.CodeOf(err))).Inc()
		return nil, err
	}

	log.Info("context refresh started", map[string]interface{}{"entities": len(entities)})
	started := d.now()

	stats := &Stats{RunID: runID}
	var mu sync.Mutex
	sem := make(chan struct{}, d.opts.Concurrency)
	var wg sync.WaitGroup

	for _, entity := range entities {
		entity := entity
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			err := d.withUnitTimeout(ctx, func(unitCtx context.Context) error {
				return retryWithBackoff(unitCtx, d.opts.MaxRetries, d.opts.RetryBaseDelay, func() error {
					return d.refreshOne(unitCtx, entity)
				})
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Skipped++
				metrics.BatchEntitiesSkipped.WithLabelValues(unit, string(errors.CodeOf(err))).Inc()
				log.Warn("entity skipped", map[string]interface{}{
					"entityId": entityID(entity),
					"error":    err.Error(),
				})
				return
			}
			stats.Processed++
		}()
	}
	wg.Wait()

	metrics.BatchUnitsProcessed.WithLabelValues(unit).Inc()
	metrics.BatchUnitDuration.WithLabelValues(unit).Observe(d.now().Sub(started).Seconds())
	log.Info("context refresh finished", map[string]interface{}{
		"processed": stats.Processed,
		"skipped":   stats.Skipped,
	})
	return stats, nil
}

// RefreshAllContexts refreshes every kind in sequence, collecting the
// combined stats. A failing kind does not stop the remaining kinds.
func (d *Driver) RefreshAllContexts(ctx context.Context) *Stats {
	combined := &Stats{RunID: uuid.NewString()}
	for _, kind := range []profile.Kind{profile.KindCity, profile.KindJob, profile.KindUser} {
		stats, err := d.RefreshContexts(ctx, kind)
		if err != nil {
			d.logger.Error("context refresh for kind failed", map[string]interface{}{
				"kind":  string(kind),
				"error": err.Error(),
			})
			continue
		}
		combined.Processed += stats.Processed
		combined.Skipped += stats.Skipped
	}
	return combined
}

// RefreshEntityContext recomputes one entity's context, used by the
// on-demand worker path.
func (d *Driver) RefreshEntityContext(ctx context.Context, contextType, id string) error {
	kind, err := profile.NormalizeKind(contextType)
	if err != nil {
		return err
	}

	var entity interface{}
	switch kind {
	case profile.KindCity:
		entity, err = d.src.City(ctx, id)
	case profile.KindJob:
		entity, err = d.src.Job(ctx, id)
	case profile.KindUser:
		entity, err = d.src.User(ctx, id)
	}
	if err != nil {
		return err
	}
	return d.refreshOne(ctx, entity)
}

// refreshOne normalizes, derives and persists the context for a single
// entity. Index mirroring failures are logged but never fail the
// refresh; Postgres is the source of truth.
func (d *Driver) refreshOne(ctx context.Context, entity interface{}) error {
	p, err := profile.Normalize(entity)
	if err != nil {
		return err
	}

	tags, insights := d.insights.Generate(p)
	rec := &models.AiContextRecord{
		ContextType:     string(p.Kind()),
		ContextID:       p.ID(),
		ContextData:     p.Snapshot(),
		AiTags:          tags,
		AiInsights:      insights,
		AiModelVersion:  d.opts.ModelVersion,
		LastGeneratedAt: d.now(),
	}

	if err := d.contexts.Upsert(ctx, rec); err != nil {
		return err
	}
	metrics.ContextsRefreshed.WithLabelValues(rec.ContextType).Inc()

	if d.indexer != nil {
		if err := d.indexer.Index(ctx, rec); err != nil {
			d.logger.Warn("context index write failed", map[string]interface{}{
				"contextType": rec.ContextType,
				"contextId":   rec.ContextID,
				"error":       err.Error(),
			})
		}
	}
	return nil
}

// RefreshUserMatches scores one user against every active job posting.
// Per-job failures are skipped and counted, matching the per-entity
// containment of context refreshes.
func (d *Driver) RefreshUserMatches(ctx context.Context, userID string) (*Stats, error) {
	unit := "match_refresh_user"
	runID := uuid.NewString()
	log := d.logger.WithFields(map[string]interface{}{"runId": runID, "userId": userID})

	user, err := d.src.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	jobs, err := d.src.Jobs(ctx, provider.Filter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	log.Info("match refresh started", map[string]interface{}{"jobs": len(jobs)})
	started := d.now()

	stats := &Stats{RunID: runID}
	for i := range jobs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if _, err := d.ComputeMatch(ctx, user, &jobs[i]); err != nil {
			stats.Skipped++
			metrics.BatchEntitiesSkipped.WithLabelValues(unit, string(errors.CodeOf(err))).Inc()
			log.Warn("job skipped", map[string]interface{}{
				"jobId": jobs[i].ID,
				"error": err.Error(),
			})
			continue
		}
		stats.Processed++
	}

	metrics.BatchUnitsProcessed.WithLabelValues(unit).Inc()
	metrics.BatchUnitDuration.WithLabelValues(unit).Observe(d.now().Sub(started).Seconds())
	log.Info("match refresh finished", map[string]interface{}{
		"processed": stats.Processed,
		"skipped":   stats.Skipped,
	})
	return stats, nil
}

// ComputeMatch scores one user against one job and persists the
// result. Returns the stored record.
func (d *Driver) ComputeMatch(ctx context.Context, user *models.User, job *models.Job) (*models.MatchRecord, error) {
	userProfile, err := profile.Normalize(user)
	if err != nil {
		return nil, err
	}
	jobProfile, err := profile.Normalize(job)
	if err != nil {
		return nil, err
	}

	result, err := d.scorer.Score(userProfile, jobProfile)
	if err != nil {
		return nil, err
	}
	tier := d.quality.Classify(result.OverallScore)

	rec := &models.MatchRecord{
		UserID:          user.ID,
		JobID:           job.ID,
		OverallScore:    result.OverallScore,
		QualityLevel:    tier.Level,
		QualityTier:     tier.Tier,
		ComponentScores: result.ComponentScores,
		Status:          models.StatusNew,
	}
	if err := d.matches.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	metrics.MatchesComputed.WithLabelValues(tier.Level).Inc()
	return rec, nil
}

// ComputeMatchByID resolves both records then scores them.
func (d *Driver) ComputeMatchByID(ctx context.Context, userID, jobID string) (*models.MatchRecord, error) {
	user, err := d.src.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	job, err := d.src.Job(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return d.ComputeMatch(ctx, user, job)
}

func (d *Driver) collectEntities(ctx context.Context, kind profile.Kind) ([]interface{}, error) {
	filter := provider.Filter{ActiveOnly: true}
	switch kind {
	case profile.KindCity:
		cities, err := d.src.Cities(ctx, filter)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(cities))
		for i := range cities {
			out[i] = &cities[i]
		}
		return out, nil
	case profile.KindJob:
		jobs, err := d.src.Jobs(ctx, filter)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(jobs))
		for i := range jobs {
			out[i] = &jobs[i]
		}
		return out, nil
	case profile.KindUser:
		users, err := d.src.Users(ctx, filter)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(users))
		for i := range users {
			out[i] = &users[i]
		}
		return out, nil
	default:
		return nil, errors.NewUnknownEntityError(string(kind))
	}
}

func (d *Driver) withUnitTimeout(ctx context.Context, fn func(context.Context) error) error {
	unitCtx, cancel := context.WithTimeout(ctx, d.opts.UnitTimeout)
	defer cancel()
	return fn(unitCtx)
}

func entityID(entity interface{}) string {
	switch e := entity.(type) {
	case *models.City:
		return e.ID
	case *models.Job:
		return e.ID
	case *models.User:
		return e.ID
	default:
		return "unknown"
	}
}
