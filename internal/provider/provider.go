// internal/provider/provider.go

// Package provider reads raw city, job and user records from the
// content site's Postgres database. The engine never writes these
// tables; they belong to the site itself.
package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/common/logger"
	"nomad-workers/internal/models"
)

// Filter narrows list queries. The zero value returns everything.
type Filter struct {
	ActiveOnly bool
	Limit      int
}

// Provider reads entity records with an optional Redis read-through
// cache in front of single-record lookups. Batch refreshes hit the
// same records many times per run, so the cache keeps the hot path off
// Postgres.
type Provider struct {
	db       *sql.DB
	cache    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

// New creates a provider. cache may be nil to disable caching.
func New(db *sql.DB, cache *redis.Client, cacheTTL time.Duration, log logger.Logger) *Provider {
	return &Provider{db: db, cache: cache, cacheTTL: cacheTTL, logger: log}
}

// cached wraps a single-record fetch with the read-through cache.
// Cache failures are logged and ignored; Postgres stays authoritative.
func cached[T any](ctx context.Context, p *Provider, key string, fetch func(context.Context) (*T, error)) (*T, error) {
	if p.cache != nil {
		raw, err := p.cache.Get(ctx, key).Result()
		if err == nil {
			var rec T
			if err := json.Unmarshal([]byte(raw), &rec); err == nil {
				return &rec, nil
			}
			p.logger.Warn("dropping undecodable cache entry", map[string]interface{}{"key": key})
			p.cache.Del(ctx, key)
		} else if err != redis.Nil {
			p.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	rec, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if raw, err := json.Marshal(rec); err == nil {
			if err := p.cache.Set(ctx, key, raw, p.cacheTTL).Err(); err != nil {
				p.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
			}
		}
	}
	return rec, nil
}

const cityColumns = `id, name, slug, country, cost_of_living_index, internet_speed_mbps,
       safety_score, coworking_spaces, english_widely_spoken, female_friendly,
       lgbtq_friendly, activities, active`

// City fetches one city by id.
func (p *Provider) City(ctx context.Context, id string) (*models.City, error) {
	return cached(ctx, p, "entity:city:"+id, func(ctx context.Context) (*models.City, error) {
		row := p.db.QueryRowContext(ctx, `SELECT `+cityColumns+` FROM cities WHERE id = $1`, id)
		city, err := scanCity(row)
		if err == sql.ErrNoRows {
			return nil, errors.NewEntityNotFoundError(models.ContextTypeCity, id)
		}
		if err != nil {
			return nil, errors.NewQueryExecutionError("get city", err)
		}
		return city, nil
	})
}

// Cities lists city records, optionally only active ones.
func (p *Provider) Cities(ctx context.Context, f Filter) ([]models.City, error) {
	rows, err := p.db.QueryContext(ctx, listQuery(cityColumns, "cities", f))
	if err != nil {
		return nil, errors.NewQueryExecutionError("list cities", err)
	}
	defer rows.Close()

	var out []models.City
	for rows.Next() {
		city, err := scanCity(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionError("scan city", err)
		}
		out = append(out, *city)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionError("list cities", err)
	}
	return out, nil
}

const jobColumns = `id, title, company, salary_min, salary_max, remote_type,
       visa_support, timezone_offset, tags, active, posted_at`

// Job fetches one job posting by id.
func (p *Provider) Job(ctx context.Context, id string) (*models.Job, error) {
	return cached(ctx, p, "entity:job:"+id, func(ctx context.Context) (*models.Job, error) {
		row := p.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
		job, err := scanJob(row)
		if err == sql.ErrNoRows {
			return nil, errors.NewEntityNotFoundError(models.ContextTypeJob, id)
		}
		if err != nil {
			return nil, errors.NewQueryExecutionError("get job", err)
		}
		return job, nil
	})
}

// Jobs lists job postings, optionally only active ones.
func (p *Provider) Jobs(ctx context.Context, f Filter) ([]models.Job, error) {
	rows, err := p.db.QueryContext(ctx, listQuery(jobColumns, "jobs", f))
	if err != nil {
		return nil, errors.NewQueryExecutionError("list jobs", err)
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionError("scan job", err)
		}
		out = append(out, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionError("list jobs", err)
	}
	return out, nil
}

const userColumns = `id, experience_years, skills, work_type, budget_min, budget_max,
       remote_preference, visa_required, visa_flexible, timezone_offset,
       preferred_activities, active`

// User fetches one candidate profile by id.
func (p *Provider) User(ctx context.Context, id string) (*models.User, error) {
	return cached(ctx, p, "entity:user:"+id, func(ctx context.Context) (*models.User, error) {
		row := p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
		user, err := scanUser(row)
		if err == sql.ErrNoRows {
			return nil, errors.NewEntityNotFoundError(models.ContextTypeUser, id)
		}
		if err != nil {
			return nil, errors.NewQueryExecutionError("get user", err)
		}
		return user, nil
	})
}

// Users lists candidate profiles, optionally only active ones.
func (p *Provider) Users(ctx context.Context, f Filter) ([]models.User, error) {
	rows, err := p.db.QueryContext(ctx, listQuery(userColumns, "users", f))
	if err != nil {
		return nil, errors.NewQueryExecutionError("list users", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionError("scan user", err)
		}
		out = append(out, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionError("list users", err)
	}
	return out, nil
}

// InvalidateEntity drops the cached copy of one entity, used after the
// site reports an entity change.
func (p *Provider) InvalidateEntity(ctx context.Context, kind, id string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Del(ctx, "entity:"+kind+":"+id).Err(); err != nil {
		p.logger.Warn("cache invalidation failed", map[string]interface{}{
			"kind": kind, "id": id, "error": err.Error(),
		})
	}
}
