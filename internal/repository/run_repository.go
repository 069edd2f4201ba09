package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnforge/learnforge-backend/internal/model"
)

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, language, token, status_id, status_label, time, memory, created_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.RunRecord
	for rows.Next() {
		var rec model.RunRecord
		if err := rows.Scan(&rec.ID, &rec.Language, &rec.Token, &rec.StatusID,
			&rec.StatusLabel, &rec.Time, &rec.Memory, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
