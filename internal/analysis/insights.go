package analysis

import (
	"fmt"
	"sort"
)

// Rating labels for benchmark comparison.
const (
	RatingExcellent    = "excellent"
	RatingGood         = "good"
	RatingAverage      = "average"
	RatingBelowAverage = "below-average"
	RatingPoor         = "poor"
)

// Thresholds configures every classification cut point so the labeling
// logic stays auditable and testable independent of the numeric
// pipeline.
type Thresholds struct {
	// Percentile cut points for comparison ratings (value relative to
	// the tier baseline, 100 = at baseline).
	ExcellentPercentile    float64
	GoodPercentile         float64
	AveragePercentile      float64
	BelowAveragePercentile float64

	// Strength / improvement rules.
	StrongKDA      float64
	WeakKDA        float64
	StrongVision   float64
	WeakVision     float64
	StrongCSPerMin float64
	WeakCSPerMin   float64
	StrongKillPart float64
	WeakKillPart   float64
	StrongWinRate  float64
	WeakWinRate    float64

	// Recommendation rules.
	RecommendMinGames   int
	RecommendMinWinRate float64

	// Champion trend labeling needs this many games.
	TrendMinGames int
}

// DefaultThresholds returns the standard classification table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExcellentPercentile:    120,
		GoodPercentile:         105,
		AveragePercentile:      90,
		BelowAveragePercentile: 75,

		StrongKDA:      3.0,
		WeakKDA:        1.5,
		StrongVision:   30,
		WeakVision:     12,
		StrongCSPerMin: 7.0,
		WeakCSPerMin:   4.5,
		StrongKillPart: 0.65,
		WeakKillPart:   0.40,
		StrongWinRate:  58,
		WeakWinRate:    45,

		RecommendMinGames:   5,
		RecommendMinWinRate: 55,

		TrendMinGames: 4,
	}
}

// tierBaselines is the versioned per-tier benchmark table used when no
// externally stored baseline is available.
var tierBaselines = map[string]PlayerMetrics{
	"IRON":        {WinRate: 48, AvgKDA: 1.6, AvgVision: 12, CSPerMinute: 4.0, KillParticipation: 0.42},
	"BRONZE":      {WinRate: 49, AvgKDA: 1.8, AvgVision: 14, CSPerMinute: 4.5, KillParticipation: 0.44},
	"SILVER":      {WinRate: 50, AvgKDA: 2.0, AvgVision: 16, CSPerMinute: 5.0, KillParticipation: 0.46},
	"GOLD":        {WinRate: 50, AvgKDA: 2.2, AvgVision: 18, CSPerMinute: 5.5, KillParticipation: 0.48},
	"PLATINUM":    {WinRate: 51, AvgKDA: 2.4, AvgVision: 21, CSPerMinute: 6.0, KillParticipation: 0.50},
	"EMERALD":     {WinRate: 51, AvgKDA: 2.6, AvgVision: 24, CSPerMinute: 6.5, KillParticipation: 0.52},
	"DIAMOND":     {WinRate: 52, AvgKDA: 2.8, AvgVision: 27, CSPerMinute: 7.0, KillParticipation: 0.54},
	"MASTER":      {WinRate: 52, AvgKDA: 3.0, AvgVision: 30, CSPerMinute: 7.5, KillParticipation: 0.56},
	"GRANDMASTER": {WinRate: 53, AvgKDA: 3.2, AvgVision: 32, CSPerMinute: 8.0, KillParticipation: 0.58},
	"CHALLENGER":  {WinRate: 54, AvgKDA: 3.4, AvgVision: 34, CSPerMinute: 8.5, KillParticipation: 0.60},
}

// TierBaseline returns the compiled benchmark for a tier. Unknown
// tiers fall back to the GOLD baseline.
func TierBaseline(tier string) PlayerMetrics {
	if b, ok := tierBaselines[tier]; ok {
		return b
	}
	return tierBaselines["GOLD"]
}

// TierNames returns all tiers with a compiled baseline, lowest first.
func TierNames() []string {
	return []string{
		"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM",
		"EMERALD", "DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER",
	}
}

// rankLadder maps composite score cut points to predicted tiers,
// highest first.
var rankLadder = []struct {
	minScore float64
	tier     string
	division string
}{
	{85, "DIAMOND", "IV"},
	{72, "EMERALD", "IV"},
	{58, "PLATINUM", "II"},
	{46, "GOLD", "II"},
	{35, "SILVER", "II"},
	{25, "BRONZE", "II"},
}

// InsightEngine composes aggregated stats and trends into qualitative
// insights. It introduces no raw-data handling of its own.
type InsightEngine struct {
	aggregator *Aggregator
	trends     *TrendCalculator
	thresholds Thresholds
}

func NewInsightEngine(aggregator *Aggregator, trends *TrendCalculator, thresholds Thresholds) *InsightEngine {
	return &InsightEngine{
		aggregator: aggregator,
		trends:     trends,
		thresholds: thresholds,
	}
}

// GenerateInsights derives role preferences, strengths, improvement
// areas, champion recommendations, a predicted rank and per-champion
// trend labels from a player's normalized records.
func (e *InsightEngine) GenerateInsights(puuid string, records []MatchRecord, mastery []MasteryRecord) (*Insights, error) {
	stats, err := e.aggregator.Aggregate(records, mastery)
	if err != nil {
		return nil, err
	}

	metrics := OverallMetrics(records)
	overallTrend := e.trends.Direction(e.trends.CalculateTrends(records))

	out := &Insights{
		PUUID:          puuid,
		PrimaryRoles:   primaryRoles(records),
		Strengths:      e.strengths(metrics),
		Improvements:   e.improvements(metrics),
		PredictedRank:  e.predictRank(metrics, len(records), overallTrend),
		ChampionTrends: e.championTrends(records),
	}

	for _, s := range stats {
		if s.Games < e.thresholds.RecommendMinGames || s.WinRate < e.thresholds.RecommendMinWinRate {
			continue
		}
		out.Recommendations = append(out.Recommendations, ChampionRecommendation{
			ChampionName: s.ChampionName,
			Reason:       fmt.Sprintf("%.0f%% win rate over %d games", s.WinRate, s.Games),
			WinRate:      s.WinRate,
			Games:        s.Games,
		})
		if len(out.Recommendations) == 3 {
			break
		}
	}

	return out, nil
}

// Compare rates a player's metrics against the baseline for a
// reference tier. Unknown tiers fall back to the GOLD baseline.
func (e *InsightEngine) Compare(metrics PlayerMetrics, referenceTier string) []ComparisonMetric {
	baseline := TierBaseline(referenceTier)

	return []ComparisonMetric{
		e.compareOne("win rate", metrics.WinRate, baseline.WinRate),
		e.compareOne("KDA", metrics.AvgKDA, baseline.AvgKDA),
		e.compareOne("vision score", metrics.AvgVision, baseline.AvgVision),
		e.compareOne("CS per minute", metrics.CSPerMinute, baseline.CSPerMinute),
		e.compareOne("kill participation", metrics.KillParticipation, baseline.KillParticipation),
	}
}

func (e *InsightEngine) compareOne(name string, value, baseline float64) ComparisonMetric {
	m := ComparisonMetric{
		Name:     name,
		Value:    value,
		Baseline: baseline,
	}
	if baseline > 0 {
		m.Percentile = value / baseline * 100
	}

	t := e.thresholds
	switch {
	case m.Percentile >= t.ExcellentPercentile:
		m.Rating = RatingExcellent
	case m.Percentile >= t.GoodPercentile:
		m.Rating = RatingGood
	case m.Percentile >= t.AveragePercentile:
		m.Rating = RatingAverage
	case m.Percentile >= t.BelowAveragePercentile:
		m.Rating = RatingBelowAverage
	default:
		m.Rating = RatingPoor
	}
	return m
}

func (e *InsightEngine) strengths(m PlayerMetrics) []string {
	t := e.thresholds
	var out []string
	if m.AvgKDA >= t.StrongKDA {
		out = append(out, "high KDA - strong fight discipline")
	}
	if m.AvgVision >= t.StrongVision {
		out = append(out, "excellent vision control")
	}
	if m.CSPerMinute >= t.StrongCSPerMin {
		out = append(out, "strong farming efficiency")
	}
	if m.KillParticipation >= t.StrongKillPart {
		out = append(out, "high kill participation - present for the map")
	}
	if m.WinRate >= t.StrongWinRate {
		out = append(out, "winning consistently at this level")
	}
	return out
}

func (e *InsightEngine) improvements(m PlayerMetrics) []string {
	t := e.thresholds
	var out []string
	if m.AvgKDA < t.WeakKDA {
		out = append(out, "dying too often - pick fights with more setup")
	}
	if m.AvgVision < t.WeakVision {
		out = append(out, "low vision score - buy more control wards")
	}
	if m.CSPerMinute < t.WeakCSPerMin {
		out = append(out, "CS per minute below par - tighten wave management")
	}
	if m.KillParticipation < t.WeakKillPart {
		out = append(out, "low kill participation - rotate to fights earlier")
	}
	return out
}

// predictRank maps the overall composite score onto the rank ladder,
// nudged by the trend direction. Confidence grows with sample size and
// shrinks when the trend is moving.
func (e *InsightEngine) predictRank(m PlayerMetrics, games int, trend string) RankPrediction {
	score := compositeScore(gradeInput{
		avgKDA:            m.AvgKDA,
		winRate:           m.WinRate,
		avgVision:         m.AvgVision,
		csPerMinute:       m.CSPerMinute,
		killParticipation: m.KillParticipation,
	})

	switch trend {
	case TrendImproving:
		score += 5
	case TrendDeclining:
		score -= 5
	}

	pred := RankPrediction{Tier: "IRON", Division: "I"}
	for _, rung := range rankLadder {
		if score >= rung.minScore {
			pred.Tier = rung.tier
			pred.Division = rung.division
			break
		}
	}

	confidence := 0.3 + float64(games)*0.02
	if trend != TrendStable {
		confidence -= 0.1
	}
	pred.Confidence = clamp(confidence, 0.1, 0.95)
	return pred
}

func (e *InsightEngine) championTrends(records []MatchRecord) map[string]string {
	byChampion := make(map[string][]MatchRecord)
	for _, rec := range records {
		byChampion[rec.ChampionName] = append(byChampion[rec.ChampionName], rec)
	}

	out := make(map[string]string)
	for name, recs := range byChampion {
		if len(recs) < e.thresholds.TrendMinGames {
			continue
		}
		out[name] = e.trends.Direction(e.trends.CalculateTrends(recs))
	}
	return out
}

// primaryRoles returns the player's roles ordered by frequency.
func primaryRoles(records []MatchRecord) []string {
	counts := make(map[string]int)
	for i := range records {
		if records[i].Role != "" {
			counts[records[i].Role]++
		}
	}

	roles := make([]string, 0, len(counts))
	for role := range counts {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		if counts[roles[i]] != counts[roles[j]] {
			return counts[roles[i]] > counts[roles[j]]
		}
		return roles[i] < roles[j]
	})

	if len(roles) > 2 {
		roles = roles[:2]
	}
	return roles
}
