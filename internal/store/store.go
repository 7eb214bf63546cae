package store

import (
	"context"
	"errors"

	"github.com/AngelCh415/collabhub/internal/models"
)

var ErrInvalid = errors.New("participation requires id and campaign_id")

// Store holds participation rows fetched from the upstream backend.
type Store interface {
	Upsert(ctx context.Context, p models.Participation) error
	Query(ctx context.Context, f models.Filter) ([]models.Participation, error)
	Close() error
}

// Open returns a SQLite store when path is set, otherwise an in-memory one.
func Open(ctx context.Context, path string) (Store, error) {
	if path == "" {
		return NewMemoryStore(), nil
	}
	st, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func validate(p models.Participation) error {
	if p.ID == "" || p.CampaignID == "" {
		return ErrInvalid
	}
	return nil
}
