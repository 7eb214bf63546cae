package metrics

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/AngelCh415/collabhub/internal/models"
	"github.com/AngelCh415/collabhub/internal/store"
)

type Service struct{ st store.Store }

func NewService(st store.Store) *Service { return &Service{st: st} }

func (s *Service) Dashboard(ctx context.Context) (models.Dashboard, error) {
	rows, err := s.st.Query(ctx, models.Filter{})
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("query participations: %w", err)
	}
	return models.Dashboard{
		Campaigns:   len(groupBy(rows, func(p models.Participation) string { return p.CampaignID })),
		Influencers: len(groupBy(rows, func(p models.Participation) string { return p.InfluencerID })),
		Summary:     Summarize(rows),
	}, nil
}

func (s *Service) Campaign(ctx context.Context, id string) (models.CampaignSummary, error) {
	rows, err := s.st.Query(ctx, models.Filter{CampaignID: id})
	if err != nil {
		return models.CampaignSummary{}, fmt.Errorf("query campaign %s: %w", id, err)
	}
	return models.CampaignSummary{CampaignID: id, Summary: Summarize(rows)}, nil
}

func (s *Service) Campaigns(ctx context.Context, v url.Values) ([]models.CampaignSummary, error) {
	rows, err := s.st.Query(ctx, models.Filter{InfluencerID: v.Get("influencer_id")})
	if err != nil {
		return nil, fmt.Errorf("query participations: %w", err)
	}
	groups := groupBy(rows, func(p models.Participation) string { return p.CampaignID })

	out := make([]models.CampaignSummary, 0, len(groups))
	for _, id := range sortedKeys(groups) {
		out = append(out, models.CampaignSummary{CampaignID: id, Summary: Summarize(groups[id])})
	}
	limit, offset := clampLimitOffset(atoiDef(v.Get("limit"), 100), atoiDef(v.Get("offset"), 0), len(out))
	return paginate(out, limit, offset), nil
}

func (s *Service) Influencers(ctx context.Context, v url.Values) ([]models.InfluencerSummary, error) {
	rows, err := s.st.Query(ctx, models.Filter{CampaignID: v.Get("campaign_id")})
	if err != nil {
		return nil, fmt.Errorf("query participations: %w", err)
	}
	groups := groupBy(rows, func(p models.Participation) string { return p.InfluencerID })

	out := make([]models.InfluencerSummary, 0, len(groups))
	for _, id := range sortedKeys(groups) {
		out = append(out, models.InfluencerSummary{InfluencerID: id, Summary: Summarize(groups[id])})
	}
	limit, offset := clampLimitOffset(atoiDef(v.Get("limit"), 100), atoiDef(v.Get("offset"), 0), len(out))
	return paginate(out, limit, offset), nil
}

func groupBy(rows []models.Participation, key func(models.Participation) string) map[string][]models.Participation {
	out := map[string][]models.Participation{}
	for _, p := range rows {
		k := key(p)
		if k == "" {
			continue
		}
		out[k] = append(out[k], p)
	}
	return out
}

// orden determinista
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
