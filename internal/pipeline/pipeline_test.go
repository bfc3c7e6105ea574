package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rift-insights/internal/cache"
	"rift-insights/internal/logger"
	"rift-insights/internal/riot"
)

const testPUUID = "puuid-test-player"

type fakeSource struct {
	mu sync.Mutex

	matchIDs []string
	matches  map[string]*riot.MatchResponse

	accountErr  error
	matchIDsErr error
	masteryErr  error
	leagueErr   error
	matchErrs   map[string]error

	matchCalls map[string]int
}

func newFakeSource(days int) *fakeSource {
	f := &fakeSource{
		matches:    make(map[string]*riot.MatchResponse),
		matchErrs:  make(map[string]error),
		matchCalls: make(map[string]int),
	}
	for i := 0; i < days; i++ {
		id := fmt.Sprintf("NA1_%d", i+1)
		f.matchIDs = append(f.matchIDs, id)
		f.matches[id] = sampleMatch(id, time.Date(2025, 5, 1+i, 12, 0, 0, 0, time.UTC), i%2 == 0)
	}
	return f
}

func sampleMatch(matchID string, ts time.Time, win bool) *riot.MatchResponse {
	return &riot.MatchResponse{
		Metadata: riot.MatchMetadata{
			MatchID:      matchID,
			Participants: []string{testPUUID, "puuid-enemy"},
		},
		Info: riot.MatchInfo{
			GameCreation: ts.UnixMilli(),
			GameDuration: 1800,
			Participants: []riot.MatchParticipant{
				{
					PUUID:                       testPUUID,
					ChampionID:                  103,
					ChampionName:                "Ahri",
					TeamID:                      100,
					TeamPosition:                "MIDDLE",
					Win:                         win,
					Kills:                       6,
					Deaths:                      2,
					Assists:                     8,
					TotalDamageDealtToChampions: 22000,
					GoldEarned:                  12000,
					TotalMinionsKilled:          180,
					VisionScore:                 24,
				},
				{
					PUUID:                       "puuid-enemy",
					ChampionID:                  64,
					TeamID:                      200,
					Win:                         !win,
					Kills:                       4,
					Deaths:                      6,
					Assists:                     3,
					TotalDamageDealtToChampions: 18000,
					GoldEarned:                  10000,
				},
			},
		},
	}
}

func (f *fakeSource) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.AccountResponse, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return &riot.AccountResponse{PUUID: testPUUID, GameName: gameName, TagLine: tagLine}, nil
}

func (f *fakeSource) GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	if f.matchIDsErr != nil {
		return nil, f.matchIDsErr
	}
	if count < len(f.matchIDs) {
		return f.matchIDs[:count], nil
	}
	return f.matchIDs, nil
}

func (f *fakeSource) GetMatch(ctx context.Context, matchID string) (*riot.MatchResponse, error) {
	f.mu.Lock()
	f.matchCalls[matchID]++
	err := f.matchErrs[matchID]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.matches[matchID], nil
}

func (f *fakeSource) GetChampionMasteries(ctx context.Context, puuid string) ([]riot.MasteryResponse, error) {
	if f.masteryErr != nil {
		return nil, f.masteryErr
	}
	return []riot.MasteryResponse{
		{ChampionID: 103, ChampionPoints: 80000, ChampionLevel: 7},
	}, nil
}

func (f *fakeSource) GetLeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntryResponse, error) {
	if f.leagueErr != nil {
		return nil, f.leagueErr
	}
	return []riot.LeagueEntryResponse{
		{QueueType: "RANKED_SOLO_5x5", Tier: "GOLD", Rank: "II", Wins: 50, Losses: 48},
	}, nil
}

type stubNames struct{}

func (stubNames) Name(id int) (string, bool) {
	if id == 103 {
		return "Ahri", true
	}
	return "", false
}

func testPipeline(source MatchSource, cfg Config) *Pipeline {
	log := logger.New().WithComponent("pipeline-test")
	return New(source, stubNames{}, cfg, log)
}

func TestRunAggregatesFullHistory(t *testing.T) {
	source := newFakeSource(6)
	p := testPipeline(source, Config{MatchCount: 20, Workers: 3})

	result, err := p.Run(context.Background(), "Faker", "KR1")
	require.NoError(t, err)

	require.NotNil(t, result.Account)
	assert.Equal(t, testPUUID, result.Account.PUUID)
	assert.False(t, result.RateLimited)
	assert.Zero(t, result.Skipped)

	require.Len(t, result.Stats, 1)
	assert.Equal(t, "Ahri", result.Stats[0].ChampionName)
	assert.Equal(t, 6, result.Stats[0].Games)
	assert.Equal(t, 3, result.Stats[0].Wins)

	// Six distinct days of play give six trend points.
	assert.Len(t, result.Trends, 6)
	require.NotNil(t, result.Insights)
	assert.Equal(t, testPUUID, result.Insights.PUUID)

	require.Len(t, result.Rank, 1)
	assert.Equal(t, "GOLD", result.Rank[0].Tier)
}

func TestRunAccountFailureAborts(t *testing.T) {
	source := newFakeSource(2)
	source.accountErr = errors.New("boom")

	_, err := testPipeline(source, Config{}).Run(context.Background(), "Faker", "KR1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve account")
}

func TestRunMatchListFailureAborts(t *testing.T) {
	source := newFakeSource(2)
	source.matchIDsErr = errors.New("boom")

	_, err := testPipeline(source, Config{}).Run(context.Background(), "Faker", "KR1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch match list")
}

func TestRunSurvivesMasteryAndLeagueFailure(t *testing.T) {
	source := newFakeSource(3)
	source.masteryErr = errors.New("mastery down")
	source.leagueErr = errors.New("league down")

	result, err := testPipeline(source, Config{}).Run(context.Background(), "Faker", "KR1")
	require.NoError(t, err)
	assert.Empty(t, result.Rank)
	assert.Equal(t, 3, result.Stats[0].Games)
}

func TestRunSkipsBadMatches(t *testing.T) {
	source := newFakeSource(4)
	source.matchErrs["NA1_2"] = errors.New("upstream 500")
	// A match the player is not in normalizes to nil and is skipped.
	source.matches["NA1_3"].Info.Participants = source.matches["NA1_3"].Info.Participants[1:]

	result, err := testPipeline(source, Config{}).Run(context.Background(), "Faker", "KR1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.Stats[0].Games)
}

func TestRunContinuesPartialOnRateLimit(t *testing.T) {
	source := newFakeSource(5)
	source.matchErrs["NA1_4"] = &cache.RateLimitedError{RetryAfter: time.Second}

	result, err := testPipeline(source, Config{Workers: 1}).Run(context.Background(), "Faker", "KR1")
	require.NoError(t, err)

	assert.True(t, result.RateLimited)
	// With one worker the denial stops further fetching; the run still
	// produces stats from what landed before it.
	assert.Equal(t, 3, result.Stats[0].Games)
}

func TestRunDeduplicatesMatchList(t *testing.T) {
	source := newFakeSource(3)
	// Upstream page boundaries can repeat an ID.
	source.matchIDs = append(source.matchIDs, "NA1_1", "NA1_2")

	result, err := testPipeline(source, Config{Workers: 2}).Run(context.Background(), "Faker", "KR1")
	require.NoError(t, err)

	for id, calls := range source.matchCalls {
		assert.Equalf(t, 1, calls, "match %s fetched %d times, want 1", id, calls)
	}
	assert.Equal(t, 3, result.Stats[0].Games)
}
