// Package analysis holds the normalization and aggregation pipeline:
// raw match payloads become canonical per-player records, records fold
// into per-champion statistics, and the derived numbers feed trend and
// insight generation.
package analysis

import "time"

// MatchRecord is one player's participation in one match, normalized
// from the raw payload. Immutable once produced.
type MatchRecord struct {
	MatchID   string
	Timestamp time.Time
	Duration  int // Seconds
	TeamID    int
	Win       bool

	Kills   int
	Deaths  int
	Assists int
	KDA     float64 // (kills+assists)/deaths; kills+assists when deaths == 0

	PhysicalDamage int
	MagicDamage    int
	TrueDamage     int
	TotalDamage    int

	GoldEarned    int
	LaneMinions   int
	JungleMinions int
	CS            int // LaneMinions + JungleMinions

	VisionScore int
	WardsPlaced int
	WardsKilled int

	DoubleKills int
	TripleKills int
	QuadraKills int
	PentaKills  int

	ChampionID   int
	ChampionName string
	Role         string

	// Team aggregates captured for share calculations.
	TeamKills         int
	TeamDamage        int
	TeamGold          int
	DamageShare       float64 // 0-1, 0 when team damage unknown
	GoldShare         float64
	KillParticipation float64
}

// MasteryRecord is the normalized champion mastery entry.
type MasteryRecord struct {
	ChampionID int
	Points     int
	Level      int
	LastPlayed time.Time
}

// ChampionStats aggregates all of one player's records on one champion.
type ChampionStats struct {
	ChampionID   int
	ChampionName string

	Games   int
	Wins    int
	WinRate float64 // 0-100

	AvgKDA    float64
	AvgDamage float64
	AvgVision float64
	AvgGold   float64
	AvgCS     float64

	// RecentForm holds up to the 5 most recent results, ordered
	// oldest-first (most recent last).
	RecentForm []bool

	Roles      map[string]int
	Multikills int
	Grade      string

	MasteryPoints int
	MasteryLevel  int
}

// TrendPoint is one calendar day's aggregate.
type TrendPoint struct {
	Date  time.Time // UTC midnight
	Games int

	WinRate   float64 // 0-100
	AvgKDA    float64
	AvgDamage float64
	AvgVision float64
	AvgCS     float64

	// Performance is the composite score used for trend direction and
	// prediction.
	Performance float64
}

// Trend direction labels.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// PlayerMetrics is the flat metric set used for benchmark comparison.
type PlayerMetrics struct {
	WinRate           float64
	AvgKDA            float64
	AvgVision         float64
	CSPerMinute       float64
	KillParticipation float64
}

// ComparisonMetric rates one player metric against a tier baseline.
type ComparisonMetric struct {
	Name     string
	Value    float64
	Baseline float64
	// Percentile is value/baseline scaled to 100 (100 = exactly at
	// the baseline).
	Percentile float64
	Rating     string
}

// RankPrediction is the predicted near-future rank.
type RankPrediction struct {
	Tier       string
	Division   string
	Confidence float64 // 0-1
}

// ChampionRecommendation suggests a champion worth prioritizing.
type ChampionRecommendation struct {
	ChampionName string
	Reason       string
	WinRate      float64
	Games        int
}

// Insights is the qualitative output composed from stats and trends.
type Insights struct {
	PUUID string

	PrimaryRoles    []string
	Strengths       []string
	Improvements    []string
	Recommendations []ChampionRecommendation
	PredictedRank   RankPrediction

	// ChampionTrends labels each sufficiently-played champion with a
	// trend direction.
	ChampionTrends map[string]string
}
