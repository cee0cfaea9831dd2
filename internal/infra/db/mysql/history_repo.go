package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/logsentinel/internal/domain/history"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Save inserts an analysis record
func (r *HistoryRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO analysis_history
  (id, input_digest, image_count, risk_score, risk_level, result_json, created_at)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  input_digest=VALUES(input_digest), image_count=VALUES(image_count),
  risk_score=VALUES(risk_score), risk_level=VALUES(risk_level), result_json=VALUES(result_json);
`
	result := rec.ResultJSON
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
		result = "{}"
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, rec.ID, stringOrDash(rec.InputDigest), rec.ImageCount,
		rec.RiskScore, stringOrDash(rec.RiskLevel), result, createdAt)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *HistoryRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, input_digest, image_count, risk_score, risk_level, result_json, created_at
FROM analysis_history
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var rec domain.Record
		var created time.Time
		if err := rows.Scan(&rec.ID, &rec.InputDigest, &rec.ImageCount, &rec.RiskScore,
			&rec.RiskLevel, &rec.ResultJSON, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt = created
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Latest returns the most recent record, or sql.ErrNoRows
func (r *HistoryRepository) Latest(ctx context.Context) (*domain.Record, error) {
	const q = `
SELECT id, input_digest, image_count, risk_score, risk_level, result_json, created_at
FROM analysis_history
ORDER BY created_at DESC, id DESC
LIMIT 1;
`
	var rec domain.Record
	err := r.db.QueryRowContext(ctx, q).Scan(&rec.ID, &rec.InputDigest, &rec.ImageCount,
		&rec.RiskScore, &rec.RiskLevel, &rec.ResultJSON, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
