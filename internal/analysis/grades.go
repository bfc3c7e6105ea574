package analysis

// Performance grading works off a weighted composite: each factor
// contributes points from its own tier table and the sum (0-100) maps
// to a letter grade. The tables are versioned constants so displayed
// grades stay reproducible across releases; tune them here, never
// inline.

type gradeTier struct {
	threshold float64
	points    int
}

// gradeTableVersion bumps whenever any tier table changes.
const gradeTableVersion = 1

var (
	// Max 30 points. KDA carries the heaviest weight.
	kdaTiers = []gradeTier{
		{4.0, 30},
		{3.0, 25},
		{2.0, 18},
		{1.5, 12},
		{1.0, 6},
	}

	// Max 25 points. Thresholds are win-rate percentages.
	winRateTiers = []gradeTier{
		{70, 25},
		{60, 20},
		{55, 15},
		{50, 10},
		{45, 5},
	}

	// Max 10 points. Thresholds are the player's share of team damage.
	damageShareTiers = []gradeTier{
		{0.30, 10},
		{0.25, 8},
		{0.20, 5},
		{0.15, 3},
	}

	// Max 10 points. Thresholds are average vision score.
	visionTiers = []gradeTier{
		{40, 10},
		{25, 8},
		{15, 5},
		{8, 2},
	}

	// Max 15 points. Thresholds are CS per minute.
	csPerMinTiers = []gradeTier{
		{8.0, 15},
		{7.0, 12},
		{6.0, 9},
		{5.0, 6},
		{4.0, 3},
	}

	// Max 10 points. Thresholds are kill participation (0-1).
	killParticipationTiers = []gradeTier{
		{0.70, 10},
		{0.60, 8},
		{0.50, 5},
		{0.40, 3},
	}
)

// letterGrades maps minimum composite score to grade, checked in order.
var letterGrades = []struct {
	minScore float64
	grade    string
}{
	{85, "S+"},
	{75, "S"},
	{65, "A"},
	{50, "B"},
	{35, "C"},
}

// tierPoints returns the points for the first tier the value reaches.
func tierPoints(tiers []gradeTier, value float64) int {
	for _, t := range tiers {
		if value >= t.threshold {
			return t.points
		}
	}
	return 0
}

// gradeInput carries the per-champion aggregates the grade draws on.
// damageShare and killParticipation may be zero when team aggregates
// were unavailable; their tiers then simply contribute nothing.
type gradeInput struct {
	avgKDA            float64
	winRate           float64
	damageShare       float64
	avgVision         float64
	csPerMinute       float64
	killParticipation float64
}

// compositeScore sums all tier contributions into a 0-100 score.
func compositeScore(in gradeInput) float64 {
	score := 0
	score += tierPoints(kdaTiers, in.avgKDA)
	score += tierPoints(winRateTiers, in.winRate)
	score += tierPoints(damageShareTiers, in.damageShare)
	score += tierPoints(visionTiers, in.avgVision)
	score += tierPoints(csPerMinTiers, in.csPerMinute)
	score += tierPoints(killParticipationTiers, in.killParticipation)
	return float64(score)
}

// letterGrade buckets a composite score.
func letterGrade(score float64) string {
	for _, g := range letterGrades {
		if score >= g.minScore {
			return g.grade
		}
	}
	return "D"
}
