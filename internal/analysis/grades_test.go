package analysis

import "testing"

func TestTierPoints(t *testing.T) {
	tests := []struct {
		name  string
		tiers []gradeTier
		value float64
		want  int
	}{
		{"KDA top tier", kdaTiers, 4.5, 30},
		{"KDA exact threshold", kdaTiers, 4.0, 30},
		{"KDA mid tier", kdaTiers, 2.5, 18},
		{"KDA below all tiers", kdaTiers, 0.5, 0},
		{"win rate top", winRateTiers, 72, 25},
		{"win rate bottom tier", winRateTiers, 46, 5},
		{"win rate below", winRateTiers, 40, 0},
		{"damage share", damageShareTiers, 0.27, 8},
		{"vision", visionTiers, 26, 8},
		{"cs per min", csPerMinTiers, 6.3, 9},
		{"kill participation", killParticipationTiers, 0.55, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tierPoints(tt.tiers, tt.value); got != tt.want {
				t.Errorf("tierPoints(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestCompositeScoreBounds(t *testing.T) {
	perfect := compositeScore(gradeInput{
		avgKDA:            10,
		winRate:           100,
		damageShare:       0.5,
		avgVision:         60,
		csPerMinute:       10,
		killParticipation: 1,
	})
	if perfect != 100 {
		t.Errorf("maxed input scores %v, want 100", perfect)
	}

	if zero := compositeScore(gradeInput{}); zero != 0 {
		t.Errorf("zero input scores %v, want 0", zero)
	}
}

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "S+"},
		{85, "S+"},
		{84.9, "S"},
		{75, "S"},
		{65, "A"},
		{64.9, "B"},
		{50, "B"},
		{35, "C"},
		{34.9, "D"},
		{0, "D"},
	}

	for _, tt := range tests {
		if got := letterGrade(tt.score); got != tt.want {
			t.Errorf("letterGrade(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
