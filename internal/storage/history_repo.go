package storage

import (
	"context"
	"fmt"

	"studydesk/internal/models"
)

// HistoryRepo records completed study sessions. Schema:
//
//	CREATE TABLE study_history (session_id TEXT PRIMARY KEY, filename TEXT NOT NULL,
//	                            kind TEXT NOT NULL, overview TEXT,
//	                            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW());
type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Insert(ctx context.Context, e models.HistoryEntry) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO study_history (session_id, filename, kind, overview)
VALUES ($1, $2, $3, NULLIF($4,''))
ON CONFLICT (session_id) DO UPDATE SET overview = EXCLUDED.overview`,
		e.SessionID, e.Filename, e.Kind, e.Overview,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListRecent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT session_id, filename, kind, COALESCE(overview,''), created_at
FROM study_history
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.SessionID, &e.Filename, &e.Kind, &e.Overview, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}
