package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AngelCh415/collabhub/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS participations (
	id            TEXT PRIMARY KEY,
	campaign_id   TEXT NOT NULL,
	influencer_id TEXT NOT NULL DEFAULT '',
	metrics       TEXT,
	updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS participations_campaign ON participations(campaign_id);
CREATE INDEX IF NOT EXISTS participations_influencer ON participations(influencer_id);
`

// fixed width so updated_at compares lexically
const tsLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteStore struct{ db *sql.DB }

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer keeps SQLITE_BUSY away
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, p models.Participation) error {
	if err := validate(p); err != nil {
		return err
	}
	var metrics any
	if len(p.Metrics) > 0 {
		metrics = string(p.Metrics)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participations (id, campaign_id, influencer_id, metrics, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			campaign_id = excluded.campaign_id,
			influencer_id = excluded.influencer_id,
			metrics = excluded.metrics,
			updated_at = excluded.updated_at
		WHERE excluded.updated_at >= participations.updated_at`,
		p.ID, p.CampaignID, p.InfluencerID, metrics, p.UpdatedAt.UTC().Format(tsLayout))
	if err != nil {
		return fmt.Errorf("upsert participation %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, f models.Filter) ([]models.Participation, error) {
	var (
		where []string
		args  []any
	)
	if f.CampaignID != "" {
		where = append(where, "campaign_id = ?")
		args = append(args, f.CampaignID)
	}
	if f.InfluencerID != "" {
		where = append(where, "influencer_id = ?")
		args = append(args, f.InfluencerID)
	}
	q := "SELECT id, campaign_id, influencer_id, metrics, updated_at FROM participations"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query participations: %w", err)
	}
	defer rows.Close()

	out := []models.Participation{}
	for rows.Next() {
		var (
			p       models.Participation
			metrics sql.NullString
			updated string
		)
		if err := rows.Scan(&p.ID, &p.CampaignID, &p.InfluencerID, &metrics, &updated); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		if metrics.Valid {
			p.Metrics = []byte(metrics.String)
		}
		if t, err := time.Parse(tsLayout, updated); err == nil {
			p.UpdatedAt = t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
