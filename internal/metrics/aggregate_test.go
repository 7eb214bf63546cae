package metrics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/collabhub/internal/models"
)

func bags(raw ...string) []models.Participation {
	out := make([]models.Participation, 0, len(raw))
	for _, r := range raw {
		p := models.Participation{ID: "p", CampaignID: "c"}
		if r != "" {
			p.Metrics = json.RawMessage(r)
		}
		out = append(out, p)
	}
	return out
}

func TestSummarizeScenario(t *testing.T) {
	s := Summarize(bags(
		`{"views":100,"clicks":10,"conversions":1,"sales":50000,"roi":2.5}`,
		`{"views":200,"clicks":30,"conversions":5,"sales":150000}`,
	))

	assert.Equal(t, 2, s.Records)
	assert.Equal(t, 300.0, s.TotalViews)
	assert.Equal(t, 40.0, s.TotalClicks)
	assert.Equal(t, 6.0, s.TotalConversions)
	assert.Equal(t, 200000.0, s.TotalSales)
	require.NotNil(t, s.AverageROI)
	assert.Equal(t, 2.5, *s.AverageROI)
	assert.False(t, s.NoData)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalViews)
	assert.Zero(t, s.TotalClicks)
	assert.Zero(t, s.TotalConversions)
	assert.Zero(t, s.TotalSales)
	assert.Nil(t, s.AverageROI)
	assert.True(t, s.NoData)
}

func TestSummarizeAveragesOnlyReportedROI(t *testing.T) {
	s := Summarize(bags(`{"roi":2.0}`, `{"views":3}`, `{"roi":4.0}`))
	require.NotNil(t, s.AverageROI)
	assert.Equal(t, 3.0, *s.AverageROI)
}

func TestSummarizeToleratesNonNumeric(t *testing.T) {
	var s models.Summary
	require.NotPanics(t, func() {
		s = Summarize(bags(`{"views":"lots","clicks":true,"sales":[1],"roi":"n/a"}`, `{"views":5}`))
	})
	assert.Equal(t, 5.0, s.TotalViews)
	assert.Zero(t, s.TotalClicks)
	assert.Zero(t, s.TotalSales)
	assert.Nil(t, s.AverageROI)
}

func TestSummarizeNumericStrings(t *testing.T) {
	s := Summarize(bags(`{"views":"100","roi":" 1.5 "}`, `{"views":50,"roi":"2.5"}`))
	assert.Equal(t, 150.0, s.TotalViews)
	require.NotNil(t, s.AverageROI)
	assert.Equal(t, 2.0, *s.AverageROI)
}

func TestSummarizeMalformedBags(t *testing.T) {
	s := Summarize(bags(
		"",
		`null`,
		`[1,2,3]`,
		`"views"`,
		`{"views":10`,
		`{"views":10}`,
	))
	assert.Equal(t, 6, s.Records)
	assert.Equal(t, 10.0, s.TotalViews)
	assert.Nil(t, s.AverageROI)
	assert.False(t, s.NoData)
}

func TestSummarizeExcludesNonFiniteAndNegative(t *testing.T) {
	s := Summarize(bags(`{"views":-40,"sales":1e400,"roi":"Infinity"}`, `{"views":"NaN","roi":-1}`))
	assert.Zero(t, s.TotalViews)
	assert.Zero(t, s.TotalSales)
	require.NotNil(t, s.AverageROI)
	assert.Equal(t, -1.0, *s.AverageROI)
}

func TestSummarizeAliases(t *testing.T) {
	s := Summarize(bags(
		`{"viewCount":1,"clickCount":2,"conversionCount":3,"salesAmount":4,"returnOnInvestment":1}`,
		`{"view_count":1,"click_count":2,"conversion_count":3,"sales_amount":4,"return_on_investment":2}`,
	))
	assert.Equal(t, 2.0, s.TotalViews)
	assert.Equal(t, 4.0, s.TotalClicks)
	assert.Equal(t, 6.0, s.TotalConversions)
	assert.Equal(t, 8.0, s.TotalSales)
	require.NotNil(t, s.AverageROI)
	assert.Equal(t, 1.5, *s.AverageROI)
}

func TestSummarizeRoundsROI(t *testing.T) {
	s := Summarize(bags(`{"roi":1}`, `{"roi":1}`, `{"roi":2}`))
	require.NotNil(t, s.AverageROI)
	assert.Equal(t, 1.33, *s.AverageROI)
}

func TestSummarizeZeroROIIsData(t *testing.T) {
	s := Summarize(bags(`{"roi":0}`))
	require.NotNil(t, s.AverageROI)
	assert.Zero(t, *s.AverageROI)
	assert.False(t, s.NoData)
}

func TestSummarizeIsPure(t *testing.T) {
	in := bags(`{"views":1,"roi":2}`, `{"clicks":"7"}`, `{"roi":3.333}`)
	before, err := json.Marshal(in)
	require.NoError(t, err)

	a := Summarize(in)
	b := Summarize(in)
	assert.Equal(t, a, b)

	after, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSummaryJSONNoData(t *testing.T) {
	b, err := json.Marshal(Summarize(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":0,"total_views":0,"total_clicks":0,"total_conversions":0,"total_sales":0,"average_roi":null,"no_data":true}`, string(b))
}
