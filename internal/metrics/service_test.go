package metrics

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/collabhub/internal/models"
	"github.com/AngelCh415/collabhub/internal/store"
)

func seeded(t *testing.T) *Service {
	t.Helper()
	st := store.NewMemoryStore()
	d, _ := time.Parse("2006-01-02", "2025-08-01")
	rows := []models.Participation{
		{ID: "p1", CampaignID: "C-2", InfluencerID: "ana", Metrics: json.RawMessage(`{"views":100,"roi":2}`), UpdatedAt: d},
		{ID: "p2", CampaignID: "C-1", InfluencerID: "ana", Metrics: json.RawMessage(`{"views":10,"sales":500}`), UpdatedAt: d},
		{ID: "p3", CampaignID: "C-1", InfluencerID: "bo", Metrics: json.RawMessage(`{"clicks":4,"roi":4}`), UpdatedAt: d},
		{ID: "p4", CampaignID: "C-3", InfluencerID: "bo", UpdatedAt: d},
	}
	for _, p := range rows {
		require.NoError(t, st.Upsert(context.Background(), p))
	}
	return NewService(st)
}

func TestServiceDashboard(t *testing.T) {
	d, err := seeded(t).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, d.Campaigns)
	assert.Equal(t, 2, d.Influencers)
	assert.Equal(t, 4, d.Summary.Records)
	assert.Equal(t, 110.0, d.Summary.TotalViews)
	assert.Equal(t, 500.0, d.Summary.TotalSales)
	require.NotNil(t, d.Summary.AverageROI)
	assert.Equal(t, 3.0, *d.Summary.AverageROI)
}

func TestServiceCampaign(t *testing.T) {
	svc := seeded(t)

	c, err := svc.Campaign(context.Background(), "C-1")
	require.NoError(t, err)
	assert.Equal(t, "C-1", c.CampaignID)
	assert.Equal(t, 2, c.Records)
	assert.Equal(t, 4.0, c.TotalClicks)

	empty, err := svc.Campaign(context.Background(), "C-3")
	require.NoError(t, err)
	assert.True(t, empty.NoData)

	unknown, err := svc.Campaign(context.Background(), "nope")
	require.NoError(t, err)
	assert.Zero(t, unknown.Records)
	assert.True(t, unknown.NoData)
}

func TestServiceCampaignsOrderedAndPaged(t *testing.T) {
	svc := seeded(t)

	all, err := svc.Campaigns(context.Background(), url.Values{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "C-1", all[0].CampaignID)
	assert.Equal(t, "C-2", all[1].CampaignID)
	assert.Equal(t, "C-3", all[2].CampaignID)

	page, err := svc.Campaigns(context.Background(), url.Values{"limit": {"1"}, "offset": {"1"}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "C-2", page[0].CampaignID)

	past, err := svc.Campaigns(context.Background(), url.Values{"offset": {"10"}})
	require.NoError(t, err)
	assert.Empty(t, past)

	byInfluencer, err := svc.Campaigns(context.Background(), url.Values{"influencer_id": {"bo"}})
	require.NoError(t, err)
	require.Len(t, byInfluencer, 2)
	assert.Equal(t, "C-1", byInfluencer[0].CampaignID)
	assert.Equal(t, 1, byInfluencer[0].Records)
}

func TestServiceInfluencers(t *testing.T) {
	svc := seeded(t)

	all, err := svc.Influencers(context.Background(), url.Values{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ana", all[0].InfluencerID)
	assert.Equal(t, 110.0, all[0].TotalViews)
	assert.Equal(t, "bo", all[1].InfluencerID)

	inC1, err := svc.Influencers(context.Background(), url.Values{"campaign_id": {"C-2"}})
	require.NoError(t, err)
	require.Len(t, inC1, 1)
	assert.Equal(t, "ana", inC1[0].InfluencerID)
}

func TestClampLimitOffset(t *testing.T) {
	l, o := clampLimitOffset(0, -3, 7)
	assert.Equal(t, 7, l)
	assert.Equal(t, 0, o)

	l, o = clampLimitOffset(5000, 9, 7)
	assert.Equal(t, 1000, l)
	assert.Equal(t, 7, o)
}
