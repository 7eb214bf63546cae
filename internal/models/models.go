package models

import (
	"encoding/json"
	"time"
)

// Participation is one brand–influencer collaboration row. Metrics is the
// free-form bag as stored upstream and may be nil or malformed.
type Participation struct {
	ID           string          `json:"id"`
	CampaignID   string          `json:"campaign_id"`
	InfluencerID string          `json:"influencer_id"`
	Metrics      json.RawMessage `json:"metrics,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Filter narrows a store query; empty fields match everything.
type Filter struct {
	CampaignID   string
	InfluencerID string
}

func (f Filter) Match(p Participation) bool {
	if f.CampaignID != "" && p.CampaignID != f.CampaignID {
		return false
	}
	if f.InfluencerID != "" && p.InfluencerID != f.InfluencerID {
		return false
	}
	return true
}

// Summary is the display-ready reduction of a set of participations.
// AverageROI is nil when no record reported a ratio.
type Summary struct {
	Records          int      `json:"records"`
	TotalViews       float64  `json:"total_views"`
	TotalClicks      float64  `json:"total_clicks"`
	TotalConversions float64  `json:"total_conversions"`
	TotalSales       float64  `json:"total_sales"`
	AverageROI       *float64 `json:"average_roi"`
	NoData           bool     `json:"no_data"`
}

type CampaignSummary struct {
	CampaignID string `json:"campaign_id"`
	Summary
}

type InfluencerSummary struct {
	InfluencerID string `json:"influencer_id"`
	Summary
}

type Dashboard struct {
	Campaigns   int     `json:"campaigns"`
	Influencers int     `json:"influencers"`
	Summary     Summary `json:"summary"`
}
