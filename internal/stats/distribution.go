// Package stats derives the label distribution and headline keyword
// frequencies shown next to the news table.
package stats

import "tickerpulse/internal/model"

// Distribution counts classified items only. Normal is everything that is
// not an outlier.
type Distribution struct {
	Total    int
	Positive int
	Negative int
	Neutral  int
	Other    int
	Normal   int
	Outlier  int

	PositivePercent float64
	NegativePercent float64
	NeutralPercent  float64
	NormalPercent   float64
	OutlierPercent  float64
}

// ComputeDistribution joins items with predictions by id.
func ComputeDistribution(items []model.NewsItem, predictions map[string]model.Prediction) Distribution {
	var d Distribution
	for _, item := range items {
		p, ok := predictions[item.ID]
		if !ok {
			continue
		}

		d.Total++
		switch p.NormalizedLabel() {
		case model.LabelPositive:
			d.Positive++
		case model.LabelNegative:
			d.Negative++
		case model.LabelNeutral:
			d.Neutral++
		default:
			d.Other++
		}

		if p.IsOutlier {
			d.Outlier++
		} else {
			d.Normal++
		}
	}

	d.PositivePercent = percent(d.Positive, d.Total)
	d.NegativePercent = percent(d.Negative, d.Total)
	d.NeutralPercent = percent(d.Neutral, d.Total)
	d.NormalPercent = percent(d.Normal, d.Total)
	d.OutlierPercent = percent(d.Outlier, d.Total)

	return d
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
