package analysis

import (
	"sort"
	"time"
)

// TrendCalculator buckets records by UTC calendar day and derives a
// performance series. Day boundaries are pinned to UTC so a player's
// trend series does not depend on which region the service runs in.
type TrendCalculator struct{}

func NewTrendCalculator() *TrendCalculator {
	return &TrendCalculator{}
}

// CalculateTrends groups records by calendar day and computes per-day
// aggregates, ascending by date. Days are unique keys: two records on
// the same UTC date always land in the same point.
func (t *TrendCalculator) CalculateTrends(records []MatchRecord) []TrendPoint {
	type dayAcc struct {
		games  int
		wins   int
		kda    float64
		damage float64
		vision float64
		cs     float64
	}

	days := make(map[time.Time]*dayAcc)
	for i := range records {
		rec := &records[i]
		day := rec.Timestamp.UTC().Truncate(24 * time.Hour)
		acc, ok := days[day]
		if !ok {
			acc = &dayAcc{}
			days[day] = acc
		}
		acc.games++
		if rec.Win {
			acc.wins++
		}
		acc.kda += rec.KDA
		acc.damage += float64(rec.TotalDamage)
		acc.vision += float64(rec.VisionScore)
		acc.cs += float64(rec.CS)
	}

	points := make([]TrendPoint, 0, len(days))
	for day, acc := range days {
		n := float64(acc.games)
		p := TrendPoint{
			Date:      day,
			Games:     acc.games,
			WinRate:   float64(acc.wins) / n * 100,
			AvgKDA:    acc.kda / n,
			AvgDamage: acc.damage / n,
			AvgVision: acc.vision / n,
			AvgCS:     acc.cs / n,
		}
		p.Performance = performanceScore(p)
		points = append(points, p)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// performanceScore is the composite blend used for the trend series.
func performanceScore(p TrendPoint) float64 {
	return p.WinRate*0.3 + p.AvgKDA*20 + p.AvgDamage/1000 + p.AvgVision*2 + p.AvgCS/10
}

// Direction classifies a windowed history by comparing the mean
// performance of its first half against its second half. Fewer than
// two points yields a neutral result rather than an error.
func (t *TrendCalculator) Direction(history []TrendPoint) string {
	delta, ok := halfDelta(history)
	if !ok {
		return TrendStable
	}

	// Small swings are noise, not a trend.
	const deadband = 5.0
	switch {
	case delta > deadband:
		return TrendImproving
	case delta < -deadband:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Predict extrapolates the half-to-half performance delta forward by
// horizonDays. This is a naive linear extrapolation — a rough
// directional signal, not a statistical model. A history shorter than
// two points predicts flat continuation of whatever exists.
func (t *TrendCalculator) Predict(history []TrendPoint, horizonDays int) []TrendPoint {
	if len(history) == 0 || horizonDays <= 0 {
		return nil
	}

	last := history[len(history)-1]
	delta, ok := halfDelta(history)

	// Per-day slope: the half delta is realized over half the history.
	var slope float64
	if ok {
		halfSpan := float64(len(history)) / 2
		if halfSpan > 0 {
			slope = delta / halfSpan
		}
	}

	// WinRate and KDA drift proportionally to the performance slope so
	// the predicted points stay self-consistent.
	var winRateSlope, kdaSlope float64
	if ok {
		if wrDelta, wok := halfDeltaOf(history, func(p TrendPoint) float64 { return p.WinRate }); wok {
			winRateSlope = wrDelta / (float64(len(history)) / 2)
		}
		if kdaDelta, kok := halfDeltaOf(history, func(p TrendPoint) float64 { return p.AvgKDA }); kok {
			kdaSlope = kdaDelta / (float64(len(history)) / 2)
		}
	}

	predicted := make([]TrendPoint, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		p := TrendPoint{
			Date:        last.Date.AddDate(0, 0, i),
			WinRate:     clamp(last.WinRate+winRateSlope*float64(i), 0, 100),
			AvgKDA:      max0(last.AvgKDA + kdaSlope*float64(i)),
			AvgDamage:   last.AvgDamage,
			AvgVision:   last.AvgVision,
			AvgCS:       last.AvgCS,
			Performance: max0(last.Performance + slope*float64(i)),
		}
		predicted = append(predicted, p)
	}
	return predicted
}

// halfDelta returns second-half mean minus first-half mean of the
// performance series. ok is false for histories shorter than 2.
func halfDelta(history []TrendPoint) (float64, bool) {
	return halfDeltaOf(history, func(p TrendPoint) float64 { return p.Performance })
}

func halfDeltaOf(history []TrendPoint, value func(TrendPoint) float64) (float64, bool) {
	if len(history) < 2 {
		return 0, false
	}
	mid := len(history) / 2
	first, second := history[:mid], history[mid:]

	var firstSum, secondSum float64
	for _, p := range first {
		firstSum += value(p)
	}
	for _, p := range second {
		secondSum += value(p)
	}
	return secondSum/float64(len(second)) - firstSum/float64(len(first)), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
