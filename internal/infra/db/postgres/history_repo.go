package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/bryanwahyu/logsentinel/internal/domain/history"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Connect opens a postgres pool with the same limits as the mysql side.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

func (r *HistoryRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO analysis_history
  (id, input_digest, image_count, risk_score, risk_level, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  input_digest=EXCLUDED.input_digest, image_count=EXCLUDED.image_count,
  risk_score=EXCLUDED.risk_score, risk_level=EXCLUDED.risk_level, result_json=EXCLUDED.result_json;
`
	result := rec.ResultJSON
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, rec.ID, rec.InputDigest, rec.ImageCount,
		rec.RiskScore, rec.RiskLevel, result, createdAt)
	return err
}

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
LIMIT $1 OFFSET $2;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.InputDigest, &rec.ImageCount, &rec.RiskScore,
			&rec.RiskLevel, &rec.ResultJSON, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

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
