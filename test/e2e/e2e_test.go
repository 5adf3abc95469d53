package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nomad-workers/internal/batch"
	"nomad-workers/internal/common/config"
	"nomad-workers/internal/common/database"
	"nomad-workers/internal/common/logger"
	"nomad-workers/internal/engine/profile"
	"nomad-workers/internal/engine/quality"
	"nomad-workers/internal/engine/scoring"
	"nomad-workers/internal/models"
	"nomad-workers/internal/provider"
	"nomad-workers/internal/store"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

// TestMain only runs the suite when E2E=1 and the full stack
// (Postgres, Redis, Zeebe) is reachable on localhost.
func TestMain(m *testing.M) {
	if os.Getenv("E2E") == "" {
		fmt.Println("E2E not set, skipping end-to-end suite")
		os.Exit(0)
	}

	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func TestFullRefreshAndMatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	log := logger.NewZapAdapter(zapLog)

	// --- Connectivity ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")

	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	require.NoError(t, err, "Zeebe topology request failed")

	// --- Seed test data ---
	seedEntities(t, ctx, pg)

	// --- Wire the engine ---
	scorer, err := scoring.NewEngine(cfg.Scoring.Weights)
	require.NoError(t, err)
	classifier, err := quality.NewClassifier(cfg.Quality.Bands)
	require.NoError(t, err)

	matchStore := store.NewMatchStore(pg.DB, log)
	contextStore := store.NewContextStore(pg.DB, log)
	src := provider.New(pg.DB, rdb.Client, time.Minute, log)

	driver := batch.NewDriver(src, matchStore, contextStore, nil, scorer, classifier,
		batch.Options{ModelVersion: "rules-v1"}, log)

	// --- Context refresh over live Postgres ---
	stats, err := driver.RefreshContexts(ctx, profile.KindCity)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.Processed, 1)

	cityCtx, err := contextStore.Get(ctx, "city", "e2e-city-1")
	require.NoError(t, err)
	assert.Contains(t, cityCtx.AiTags, "budget-friendly")
	assert.Equal(t, "rules-v1", cityCtx.AiModelVersion)

	// --- On-demand match compute ---
	rec, err := driver.ComputeMatchByID(ctx, "e2e-user-1", "e2e-job-1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rec.OverallScore, 0)
	assert.LessOrEqual(t, rec.OverallScore, 100)
	assert.Equal(t, models.StatusNew, rec.Status)

	// --- Status lifecycle ---
	require.NoError(t, matchStore.AdvanceStatus(ctx, "e2e-user-1", "e2e-job-1", models.StatusViewed))
	require.NoError(t, matchStore.AdvanceStatus(ctx, "e2e-user-1", "e2e-job-1", models.StatusApplied))

	stored, err := matchStore.Get(ctx, "e2e-user-1", "e2e-job-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, stored.Status)
	assert.NotNil(t, stored.AppliedAt)

	// Re-scoring must not rewind the lifecycle.
	_, err = driver.ComputeMatchByID(ctx, "e2e-user-1", "e2e-job-1")
	require.NoError(t, err)
	after, err := matchStore.Get(ctx, "e2e-user-1", "e2e-job-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, after.Status)
}

func seedEntities(t *testing.T, ctx context.Context, pg *database.PostgresClient) {
	t.Helper()

	statements := []string{
		`INSERT INTO cities (id, name, slug, country, cost_of_living_index, active)
		 VALUES ('e2e-city-1', 'Testville', 'testville', 'Testland', 40, true)
		 ON CONFLICT (id) DO UPDATE SET cost_of_living_index = 40, active = true`,
		`INSERT INTO jobs (id, title, company, tags, active, posted_at)
		 VALUES ('e2e-job-1', 'Engineer', 'Acme', '["go"]', true, now())
		 ON CONFLICT (id) DO UPDATE SET active = true`,
		`INSERT INTO users (id, skills, active)
		 VALUES ('e2e-user-1', '["Go"]', true)
		 ON CONFLICT (id) DO UPDATE SET active = true`,
		`DELETE FROM job_matches WHERE user_id = 'e2e-user-1' AND job_id = 'e2e-job-1'`,
	}
	for _, stmt := range statements {
		_, err := pg.Exec(ctx, stmt)
		require.NoError(t, err)
	}
}
