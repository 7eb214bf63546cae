package metrics

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/AngelCh415/collabhub/internal/models"
)

// bag keys, first present alias wins
var (
	viewKeys       = []string{"views", "view_count", "viewCount"}
	clickKeys      = []string{"clicks", "click_count", "clickCount"}
	conversionKeys = []string{"conversions", "conversion_count", "conversionCount"}
	salesKeys      = []string{"sales", "sales_amount", "salesAmount"}
	roiKeys        = []string{"roi", "return_on_investment", "returnOnInvestment"}
)

// Summarize reduces participations into one summary. Missing, non-numeric
// or negative counters count as 0; ROI is averaged only over records that
// report a finite value.
func Summarize(rows []models.Participation) models.Summary {
	var (
		s      = models.Summary{Records: len(rows)}
		roiSum float64
		roiN   int
	)
	for _, p := range rows {
		bag, ok := parseBag(p.Metrics)
		if !ok {
			continue
		}
		s.TotalViews += counter(bag, viewKeys)
		s.TotalClicks += counter(bag, clickKeys)
		s.TotalConversions += counter(bag, conversionKeys)
		s.TotalSales += counter(bag, salesKeys)
		if v, ok := number(lookup(bag, roiKeys)); ok {
			roiSum += v
			roiN++
		}
	}
	if roiN > 0 {
		avg := round2(roiSum / float64(roiN))
		s.AverageROI = &avg
	}
	s.NoData = roiN == 0 &&
		s.TotalViews == 0 && s.TotalClicks == 0 &&
		s.TotalConversions == 0 && s.TotalSales == 0
	return s
}

func parseBag(raw []byte) (gjson.Result, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}, false
	}
	bag := gjson.ParseBytes(raw)
	if !bag.IsObject() {
		return gjson.Result{}, false
	}
	return bag, true
}

func lookup(bag gjson.Result, keys []string) gjson.Result {
	for _, k := range keys {
		if v := bag.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func counter(bag gjson.Result, keys []string) float64 {
	v, ok := number(lookup(bag, keys))
	if !ok || v < 0 {
		return 0
	}
	return v
}

// number coerces JSON numbers and numeric strings; anything else,
// including NaN and ±Inf, is reported as absent.
func number(v gjson.Result) (float64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		var err error
		if f, err = strconv.ParseFloat(v.Raw, 64); err != nil {
			return 0, false
		}
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, false
		}
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
