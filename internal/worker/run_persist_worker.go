package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnforge/learnforge-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RunPersistWorker consumes persist_runs_queue and inserts run records
// into PostgreSQL, keeping the execution request path free of database
// latency.
type RunPersistWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewRunPersistWorker creates a new RunPersistWorker.
func NewRunPersistWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *RunPersistWorker {
	return &RunPersistWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "run_persist_worker").Logger(),
	}
}

type runPayload struct {
	Language    string   `json:"language"`
	Token       string   `json:"token"`
	StatusID    int      `json:"status_id"`
	StatusLabel string   `json:"status_label"`
	Time        *float64 `json:"time"`
	Memory      *float64 `json:"memory"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *RunPersistWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *RunPersistWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistRunsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload runPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistRun(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("token", payload.Token).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistRunsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *RunPersistWorker) persistRun(ctx context.Context, p *runPayload) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO runs (language, token, status_id, status_label, time, memory)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (token) DO NOTHING`,
		p.Language, p.Token, p.StatusID, p.StatusLabel, p.Time, p.Memory,
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *RunPersistWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistRunsQueue).Result()
		if err != nil {
			break
		}

		var payload runPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistRun(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistRunsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
