package analysis

import (
	"fmt"
	"time"

	"rift-insights/internal/logger"
	"rift-insights/internal/riot"
)

// NameResolver resolves champion IDs to display names. Satisfied by
// riot.ChampionRegistry.
type NameResolver interface {
	Name(id int) (string, bool)
}

// Normalizer converts raw match payloads into canonical MatchRecords.
// It is the only code that touches the provider's wire shape; schema
// drift stops here.
type Normalizer struct {
	names NameResolver
	log   *logger.Entry
}

func NewNormalizer(names NameResolver, log *logger.Entry) *Normalizer {
	return &Normalizer{names: names, log: log}
}

// Normalize extracts the participant matching puuid from a raw match.
// Returns nil when the participant is absent or the payload is
// malformed: a bad record is a skip condition, not a batch failure.
func (n *Normalizer) Normalize(match *riot.MatchResponse, puuid string) *MatchRecord {
	if match == nil || len(match.Info.Participants) == 0 {
		n.log.WithFields(logger.Fields{"puuid": shortID(puuid)}).
			Warn("skipping malformed match payload")
		return nil
	}

	var p *riot.MatchParticipant
	for i := range match.Info.Participants {
		if match.Info.Participants[i].PUUID == puuid {
			p = &match.Info.Participants[i]
			break
		}
	}
	if p == nil {
		n.log.WithFields(logger.Fields{
			"match": match.Metadata.MatchID,
			"puuid": shortID(puuid),
		}).Warn("player not found in match, skipping")
		return nil
	}

	rec := &MatchRecord{
		MatchID:   match.Metadata.MatchID,
		Timestamp: time.UnixMilli(match.Info.GameCreation).UTC(),
		Duration:  match.Info.GameDuration,
		TeamID:    p.TeamID,
		Win:       p.Win,

		Kills:   p.Kills,
		Deaths:  p.Deaths,
		Assists: p.Assists,

		PhysicalDamage: p.PhysicalDamageDealtToChampions,
		MagicDamage:    p.MagicDamageDealtToChampions,
		TrueDamage:     p.TrueDamageDealtToChampions,
		TotalDamage:    p.TotalDamageDealtToChampions,

		GoldEarned:    p.GoldEarned,
		LaneMinions:   p.TotalMinionsKilled,
		JungleMinions: p.NeutralMinionsKilled,

		VisionScore: p.VisionScore,
		WardsPlaced: p.WardsPlaced,
		WardsKilled: p.WardsKilled,

		DoubleKills: p.DoubleKills,
		TripleKills: p.TripleKills,
		QuadraKills: p.QuadraKills,
		PentaKills:  p.PentaKills,

		ChampionID:   p.ChampionID,
		ChampionName: n.resolveName(p),
		Role:         p.TeamPosition,
	}

	// Derived fields are computed once here so consumers never apply
	// scattered defaults.
	rec.CS = rec.LaneMinions + rec.JungleMinions
	rec.KDA = computeKDA(rec.Kills, rec.Deaths, rec.Assists)

	for i := range match.Info.Participants {
		tp := &match.Info.Participants[i]
		if tp.TeamID != p.TeamID {
			continue
		}
		rec.TeamKills += tp.Kills
		rec.TeamDamage += tp.TotalDamageDealtToChampions
		rec.TeamGold += tp.GoldEarned
	}
	if rec.TeamDamage > 0 {
		rec.DamageShare = float64(rec.TotalDamage) / float64(rec.TeamDamage)
	}
	if rec.TeamGold > 0 {
		rec.GoldShare = float64(rec.GoldEarned) / float64(rec.TeamGold)
	}
	if rec.TeamKills > 0 {
		rec.KillParticipation = float64(rec.Kills+rec.Assists) / float64(rec.TeamKills)
	}

	return rec
}

// NormalizeMastery converts raw mastery entries.
func (n *Normalizer) NormalizeMastery(raw []riot.MasteryResponse) []MasteryRecord {
	records := make([]MasteryRecord, 0, len(raw))
	for _, m := range raw {
		records = append(records, MasteryRecord{
			ChampionID: m.ChampionID,
			Points:     m.ChampionPoints,
			Level:      m.ChampionLevel,
			LastPlayed: time.UnixMilli(m.LastPlayTime).UTC(),
		})
	}
	return records
}

// resolveName applies the three-tier fallback: embedded name, then the
// registry, then a synthetic placeholder so a raw numeric ID never
// masquerades as a name.
func (n *Normalizer) resolveName(p *riot.MatchParticipant) string {
	if p.ChampionName != "" {
		return p.ChampionName
	}
	if name, ok := n.names.Name(p.ChampionID); ok {
		return name
	}
	return fmt.Sprintf("Champion_%d", p.ChampionID)
}

// computeKDA applies the zero-death policy: a death-free game yields a
// "perfect" KDA of kills+assists, not infinity.
func computeKDA(kills, deaths, assists int) float64 {
	if deaths > 0 {
		return float64(kills+assists) / float64(deaths)
	}
	return float64(kills + assists)
}

func shortID(puuid string) string {
	if len(puuid) > 16 {
		return puuid[:16]
	}
	return puuid
}
