package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AngelCh415/collabhub/internal/config"
	"github.com/AngelCh415/collabhub/internal/models"
	"github.com/AngelCh415/collabhub/internal/store"
	"github.com/AngelCh415/collabhub/internal/telemetry"
)

var ErrNotConfigured = errors.New("source not configured")

// Syncer pulls participation rows from the upstream backend into the store.
// Change notifications call Trigger; Loop coalesces them into runs.
type Syncer struct {
	c   HTTPClient
	st  store.Store
	log *slog.Logger
	cfg config.Config
	m   *telemetry.Metrics

	mu   sync.Mutex
	kick chan struct{}
}

func NewSyncer(c HTTPClient, st store.Store, log *slog.Logger, cfg config.Config, m *telemetry.Metrics) *Syncer {
	return &Syncer{c: c, st: st, log: log, cfg: cfg, m: m, kick: make(chan struct{}, 1)}
}

type sourceRow struct {
	ID           string          `json:"id"`
	CampaignID   string          `json:"campaign_id"`
	InfluencerID string          `json:"influencer_id"`
	Metrics      json.RawMessage `json:"metrics"`
	UpdatedAt    string          `json:"updated_at"`
}

// Run fetches every row once and upserts it. Runs never overlap.
func (s *Syncer) Run(ctx context.Context) (int, error) {
	if s.cfg.SourceURL == "" {
		return 0, ErrNotConfigured
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []sourceRow
	if err := GetJSONWithRetry(ctx, s.c, s.cfg.SourceURL, s.cfg.SourceAPIKey, &rows); err != nil {
		s.count("error", 0)
		return 0, err
	}

	n := 0
	for _, r := range rows {
		p, ok := normalize(r)
		if !ok {
			continue
		}
		if err := s.st.Upsert(ctx, p); err != nil {
			s.count("error", n)
			return n, err
		}
		n++
	}
	s.count("ok", n)
	s.log.Info("sync complete", slog.Int("fetched", len(rows)), slog.Int("upserted", n))
	return n, nil
}

func (s *Syncer) count(result string, rows int) {
	if s.m == nil {
		return
	}
	s.m.SyncRuns.WithLabelValues(result).Inc()
	s.m.SyncedRows.Add(float64(rows))
}

// Trigger queues a run without blocking; queued requests collapse into one.
func (s *Syncer) Trigger() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Loop serves triggered runs until ctx ends.
func (s *Syncer) Loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
			if _, err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error("sync failed", slog.String("err", err.Error()))
			}
		}
	}
}

func normalize(r sourceRow) (models.Participation, bool) {
	p := models.Participation{
		ID:           strings.TrimSpace(r.ID),
		CampaignID:   strings.TrimSpace(r.CampaignID),
		InfluencerID: strings.TrimSpace(r.InfluencerID),
	}
	if p.ID == "" || p.CampaignID == "" {
		return p, false
	}
	if m := bytes.TrimSpace(r.Metrics); len(m) > 0 && !bytes.Equal(m, []byte("null")) {
		p.Metrics = m
	}
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(r.UpdatedAt)); err == nil {
		p.UpdatedAt = t.UTC()
	}
	return p, true
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a change notification signature in constant time.
// An empty secret rejects everything.
func VerifySignature(secret string, body []byte, sig string) bool {
	if secret == "" || sig == "" {
		return false
	}
	want, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(sig), "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}
