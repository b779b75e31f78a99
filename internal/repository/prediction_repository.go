package repository

import (
	"database/sql"
	"tickerpulse/internal/model"

	"github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS article_prediction (
		id            BIGSERIAL PRIMARY KEY,
		session_id    TEXT NOT NULL,
		article_id    TEXT NOT NULL,
		ticker        TEXT NOT NULL,
		title         TEXT NOT NULL,
		label         TEXT NOT NULL,
		score         DOUBLE PRECISION NOT NULL,
		is_outlier    BOOLEAN NOT NULL DEFAULT FALSE,
		classified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (session_id, article_id)
	)`

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) EnsureSchema() error {
	_, err := r.db.Exec(schema)
	return err
}

// Save stores rec and reports false when the session already recorded the
// article.
func (r *PredictionRepository) Save(rec *model.PredictionRecord) (bool, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO article_prediction(session_id, article_id, ticker, title, label, score, is_outlier, classified_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, article_id) DO NOTHING
		RETURNING id
	`, rec.SessionID, rec.ArticleID, rec.Ticker, rec.Title, rec.Label, rec.Score, rec.IsOutlier, rec.ClassifiedAt).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	rec.ID = id
	return true, nil
}

// ListByTickers returns the newest rows first. An empty tickers slice lists
// every ticker.
func (r *PredictionRepository) ListByTickers(tickers []string, limit int) ([]model.PredictionRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(tickers) == 0 {
		rows, err = r.db.Query(`
			SELECT id, session_id, article_id, ticker, title, label, score, is_outlier, classified_at
			FROM article_prediction
			ORDER BY classified_at DESC, id DESC
			LIMIT $1
		`, limit)
	} else {
		rows, err = r.db.Query(`
			SELECT id, session_id, article_id, ticker, title, label, score, is_outlier, classified_at
			FROM article_prediction
			WHERE ticker = ANY($1)
			ORDER BY classified_at DESC, id DESC
			LIMIT $2
		`, pq.Array(tickers), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.PredictionRecord
	for rows.Next() {
		var p model.PredictionRecord
		err := rows.Scan(&p.ID, &p.SessionID, &p.ArticleID, &p.Ticker, &p.Title, &p.Label, &p.Score, &p.IsOutlier, &p.ClassifiedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *PredictionRepository) Ping() error {
	return r.db.Ping()
}
