package analysis

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInconsistent marks an internal invariant violation during
// aggregation. It is fatal to the single run that produced it; wrong
// numbers must never be surfaced silently.
var ErrInconsistent = errors.New("aggregation inconsistency")

const recentFormSize = 5

// Aggregator folds normalized records into per-champion statistics.
type Aggregator struct {
	names NameResolver
}

func NewAggregator(names NameResolver) *Aggregator {
	return &Aggregator{names: names}
}

// champAcc carries running aggregates that feed grading but are not
// part of the published ChampionStats.
type champAcc struct {
	stats              *ChampionStats
	avgDamageShare     float64
	avgKillPart        float64
	avgDurationMinutes float64
}

// Aggregate seeds one entry per mastery record (champions with mastery
// but no recent games still appear with games=0), then folds each
// match record into the matching champion, creating entries on the fly
// for champions played without mastery data. Records must arrive in
// chronological order; fold order is input order so the recent-form
// window and any persisted intermediate values stay reproducible.
func (a *Aggregator) Aggregate(records []MatchRecord, mastery []MasteryRecord) ([]ChampionStats, error) {
	accs := make(map[int]*champAcc)

	for _, m := range mastery {
		accs[m.ChampionID] = &champAcc{
			stats: &ChampionStats{
				ChampionID:    m.ChampionID,
				ChampionName:  a.championName(m.ChampionID),
				Roles:         make(map[string]int),
				MasteryPoints: m.Points,
				MasteryLevel:  m.Level,
			},
		}
	}

	folded := 0
	for i := range records {
		rec := &records[i]
		acc, ok := accs[rec.ChampionID]
		if !ok {
			acc = &champAcc{
				stats: &ChampionStats{
					ChampionID:   rec.ChampionID,
					ChampionName: rec.ChampionName,
					Roles:        make(map[string]int),
				},
			}
			accs[rec.ChampionID] = acc
		}
		if acc.stats.ChampionName == "" || acc.stats.ChampionName == fmt.Sprintf("Champion_%d", rec.ChampionID) {
			// A played record carries a better name than the mastery seed.
			if rec.ChampionName != "" {
				acc.stats.ChampionName = rec.ChampionName
			}
		}
		acc.fold(rec)
		folded++
	}

	stats := make([]ChampionStats, 0, len(accs))
	total := 0
	for _, acc := range accs {
		s := acc.stats
		total += s.Games

		if err := checkInvariants(s); err != nil {
			return nil, err
		}

		if s.Games > 0 {
			s.Grade = letterGrade(compositeScore(gradeInput{
				avgKDA:            s.AvgKDA,
				winRate:           s.WinRate,
				damageShare:       acc.avgDamageShare,
				avgVision:         s.AvgVision,
				csPerMinute:       csPerMinute(s.AvgCS, acc.avgDurationMinutes),
				killParticipation: acc.avgKillPart,
			}))
		}
		stats = append(stats, *s)
	}

	if total != folded {
		return nil, fmt.Errorf("%w: folded %d records but champion games sum to %d", ErrInconsistent, folded, total)
	}

	// Most-played first; downstream consumers rely on this ordering
	// for "top N champions".
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Games != stats[j].Games {
			return stats[i].Games > stats[j].Games
		}
		if stats[i].MasteryPoints != stats[j].MasteryPoints {
			return stats[i].MasteryPoints > stats[j].MasteryPoints
		}
		return stats[i].ChampionName < stats[j].ChampionName
	})

	return stats, nil
}

// fold merges one record into the accumulator using the running
// average update newAvg = (oldAvg*(n-1) + sample) / n.
func (c *champAcc) fold(rec *MatchRecord) {
	s := c.stats
	s.Games++
	if rec.Win {
		s.Wins++
	}
	s.WinRate = float64(s.Wins) / float64(s.Games) * 100

	n := float64(s.Games)
	s.AvgKDA = runningAvg(s.AvgKDA, rec.KDA, n)
	s.AvgDamage = runningAvg(s.AvgDamage, float64(rec.TotalDamage), n)
	s.AvgVision = runningAvg(s.AvgVision, float64(rec.VisionScore), n)
	s.AvgGold = runningAvg(s.AvgGold, float64(rec.GoldEarned), n)
	s.AvgCS = runningAvg(s.AvgCS, float64(rec.CS), n)

	c.avgDamageShare = runningAvg(c.avgDamageShare, rec.DamageShare, n)
	c.avgKillPart = runningAvg(c.avgKillPart, rec.KillParticipation, n)
	c.avgDurationMinutes = runningAvg(c.avgDurationMinutes, float64(rec.Duration)/60, n)

	s.RecentForm = append(s.RecentForm, rec.Win)
	if len(s.RecentForm) > recentFormSize {
		s.RecentForm = s.RecentForm[len(s.RecentForm)-recentFormSize:]
	}

	if rec.Role != "" {
		s.Roles[rec.Role]++
	}
	s.Multikills += rec.DoubleKills + rec.TripleKills + rec.QuadraKills + rec.PentaKills
}

func runningAvg(oldAvg, sample, n float64) float64 {
	return (oldAvg*(n-1) + sample) / n
}

func csPerMinute(avgCS, avgMinutes float64) float64 {
	if avgMinutes <= 0 {
		return 0
	}
	return avgCS / avgMinutes
}

func checkInvariants(s *ChampionStats) error {
	if s.Games < 0 {
		return fmt.Errorf("%w: champion %s has negative games", ErrInconsistent, s.ChampionName)
	}
	if s.WinRate < 0 || s.WinRate > 100 {
		return fmt.Errorf("%w: champion %s win rate %.2f out of range", ErrInconsistent, s.ChampionName, s.WinRate)
	}
	if len(s.RecentForm) > recentFormSize {
		return fmt.Errorf("%w: champion %s recent form has %d entries", ErrInconsistent, s.ChampionName, len(s.RecentForm))
	}
	return nil
}

// championName resolves a mastery-seeded champion's name: registry
// first, synthetic placeholder when unknown. Seeds have no embedded
// name to prefer.
func (a *Aggregator) championName(id int) string {
	if name, ok := a.names.Name(id); ok {
		return name
	}
	return fmt.Sprintf("Champion_%d", id)
}

// OverallMetrics flattens a record set into the metric profile used
// for benchmark comparison and rank prediction.
func OverallMetrics(records []MatchRecord) PlayerMetrics {
	if len(records) == 0 {
		return PlayerMetrics{}
	}

	var m PlayerMetrics
	wins := 0
	var minutes float64
	var totalCS float64
	for i := range records {
		rec := &records[i]
		if rec.Win {
			wins++
		}
		m.AvgKDA += rec.KDA
		m.AvgVision += float64(rec.VisionScore)
		m.KillParticipation += rec.KillParticipation
		totalCS += float64(rec.CS)
		minutes += float64(rec.Duration) / 60
	}

	n := float64(len(records))
	m.WinRate = float64(wins) / n * 100
	m.AvgKDA /= n
	m.AvgVision /= n
	m.KillParticipation /= n
	if minutes > 0 {
		m.CSPerMinute = totalCS / minutes
	}
	return m
}
