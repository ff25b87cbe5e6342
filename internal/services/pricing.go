package services

import (
	"github.com/shopspring/decimal"

	"foodorder/internal/models"
)

// CartTotal is deliveryFee + Σ(price × quantity), summed in decimal so that
// repeated recomputation does not drift.
func CartTotal(items []models.CartItem, deliveryFee float64) float64 {
	total := decimal.NewFromFloat(deliveryFee)
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.InexactFloat64()
}

// SummarizeRatings derives the cached restaurant aggregate from a breakdown:
// totalRatings = Σ count, averageRating = Σ(star × count) / Σ count rounded
// to one decimal place.
func SummarizeRatings(b models.RatingBreakdown) models.RatingSummary {
	var count, score int64
	for star := 1; star <= 5; star++ {
		n := b.Count(star)
		count += n
		score += int64(star) * n
	}

	summary := models.RatingSummary{TotalRatings: count, Breakdown: b}
	if count > 0 {
		avg := decimal.NewFromInt(score).DivRound(decimal.NewFromInt(count), 8).Round(1)
		summary.AverageRating = avg.InexactFloat64()
	}
	return summary
}

func roundTenth(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
