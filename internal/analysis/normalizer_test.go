package analysis

import (
	"math"
	"testing"
	"time"

	"rift-insights/internal/logger"
	"rift-insights/internal/riot"
)

type stubResolver struct {
	names map[int]string
}

func (r *stubResolver) Name(id int) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

func testNormalizer(names map[int]string) *Normalizer {
	return NewNormalizer(&stubResolver{names: names}, logger.New().WithComponent("test"))
}

func sampleMatch(puuid string) *riot.MatchResponse {
	return &riot.MatchResponse{
		Metadata: riot.MatchMetadata{MatchID: "NA1_100"},
		Info: riot.MatchInfo{
			GameCreation: time.Date(2025, 5, 1, 18, 30, 0, 0, time.UTC).UnixMilli(),
			GameDuration: 1800,
			Participants: []riot.MatchParticipant{
				{
					PUUID:        puuid,
					TeamID:       100,
					ChampionID:   103,
					ChampionName: "Ahri",
					TeamPosition: "MIDDLE",
					Win:          true,
					Kills:        8, Deaths: 2, Assists: 6,
					TotalDamageDealtToChampions: 24000,
					GoldEarned:                  12000,
					TotalMinionsKilled:          180,
					NeutralMinionsKilled:        20,
					VisionScore:                 22,
				},
				{
					PUUID: "teammate", TeamID: 100, ChampionID: 64,
					Kills: 4, Deaths: 5, Assists: 10,
					TotalDamageDealtToChampions: 16000,
					GoldEarned:                  10000,
				},
				{
					PUUID: "enemy", TeamID: 200, ChampionID: 238,
					Kills: 7, Deaths: 6, Assists: 2,
					TotalDamageDealtToChampions: 20000,
					GoldEarned:                  11000,
				},
			},
		},
	}
}

func TestNormalize(t *testing.T) {
	n := testNormalizer(nil)
	rec := n.Normalize(sampleMatch("player-1"), "player-1")
	if rec == nil {
		t.Fatal("expected a record")
	}

	if rec.MatchID != "NA1_100" {
		t.Errorf("MatchID = %s", rec.MatchID)
	}
	if rec.CS != 200 {
		t.Errorf("CS = %d, want lane+jungle = 200", rec.CS)
	}
	if got, want := rec.KDA, 7.0; got != want {
		t.Errorf("KDA = %v, want %v", got, want)
	}
	if rec.ChampionName != "Ahri" {
		t.Errorf("ChampionName = %s", rec.ChampionName)
	}
	if rec.Role != "MIDDLE" {
		t.Errorf("Role = %s", rec.Role)
	}

	// Team aggregates only cover team 100.
	if rec.TeamKills != 12 {
		t.Errorf("TeamKills = %d, want 12", rec.TeamKills)
	}
	if got, want := rec.DamageShare, 24000.0/40000.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("DamageShare = %v, want %v", got, want)
	}
	if got, want := rec.KillParticipation, 14.0/12.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("KillParticipation = %v, want %v", got, want)
	}
}

func TestNormalizeMissingParticipantSkips(t *testing.T) {
	n := testNormalizer(nil)
	if rec := n.Normalize(sampleMatch("player-1"), "someone-else"); rec != nil {
		t.Error("missing participant should return nil, not a record")
	}
	if rec := n.Normalize(nil, "player-1"); rec != nil {
		t.Error("nil payload should return nil")
	}
	if rec := n.Normalize(&riot.MatchResponse{}, "player-1"); rec != nil {
		t.Error("empty participant list should return nil")
	}
}

func TestNormalizeZeroDeathKDA(t *testing.T) {
	n := testNormalizer(nil)
	match := sampleMatch("player-1")
	match.Info.Participants[0].Kills = 5
	match.Info.Participants[0].Deaths = 0
	match.Info.Participants[0].Assists = 7

	rec := n.Normalize(match, "player-1")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.KDA != 12.0 {
		t.Errorf("zero-death KDA = %v, want 12.0 (kills+assists)", rec.KDA)
	}
	if math.IsInf(rec.KDA, 1) {
		t.Error("zero-death KDA must not be infinite")
	}
}

func TestNormalizeNameFallback(t *testing.T) {
	tests := []struct {
		name         string
		embeddedName string
		registry     map[int]string
		want         string
	}{
		{"embedded name wins", "Ahri", map[int]string{103: "NotAhri"}, "Ahri"},
		{"registry fallback", "", map[int]string{103: "Ahri"}, "Ahri"},
		{"synthetic placeholder", "", nil, "Champion_103"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := testNormalizer(tt.registry)
			match := sampleMatch("player-1")
			match.Info.Participants[0].ChampionName = tt.embeddedName

			rec := n.Normalize(match, "player-1")
			if rec == nil {
				t.Fatal("expected a record")
			}
			if rec.ChampionName != tt.want {
				t.Errorf("ChampionName = %s, want %s", rec.ChampionName, tt.want)
			}
		})
	}
}

func TestNormalizeMastery(t *testing.T) {
	n := testNormalizer(nil)
	raw := []riot.MasteryResponse{
		{ChampionID: 103, ChampionLevel: 7, ChampionPoints: 120000, LastPlayTime: 1714000000000},
	}

	records := n.NormalizeMastery(raw)
	if len(records) != 1 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].ChampionID != 103 || records[0].Points != 120000 || records[0].Level != 7 {
		t.Errorf("unexpected mastery record: %+v", records[0])
	}
	if records[0].LastPlayed.IsZero() {
		t.Error("LastPlayed not set")
	}
}
