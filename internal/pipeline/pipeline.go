// Package pipeline orchestrates a per-player aggregation run: resolve
// the account, fetch the raw categories in parallel, fan out over
// per-match detail with a bounded worker pool, then normalize,
// aggregate and derive trends and insights.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"golang.org/x/sync/errgroup"

	"rift-insights/internal/analysis"
	"rift-insights/internal/cache"
	"rift-insights/internal/logger"
	"rift-insights/internal/riot"
)

const matchChannelBuffer = 100

// MatchSource is the upstream surface the pipeline needs. Satisfied by
// riot.Client; tests substitute a fake.
type MatchSource interface {
	GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.AccountResponse, error)
	GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*riot.MatchResponse, error)
	GetChampionMasteries(ctx context.Context, puuid string) ([]riot.MasteryResponse, error)
	GetLeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntryResponse, error)
}

// Result is the full derived output for one player.
type Result struct {
	Account *riot.AccountResponse
	Rank    []riot.LeagueEntryResponse

	Stats    []analysis.ChampionStats
	Trends   []analysis.TrendPoint
	Insights *analysis.Insights

	// Skipped counts raw records dropped during normalization; the
	// run succeeds with partial data.
	Skipped int
	// RateLimited reports that some match details could not be
	// fetched within quota and the output covers a subset.
	RateLimited bool
}

type Config struct {
	MatchCount int
	Workers    int
}

// Pipeline is stateless between runs and safe for concurrent use.
type Pipeline struct {
	source     MatchSource
	normalizer *analysis.Normalizer
	aggregator *analysis.Aggregator
	trends     *analysis.TrendCalculator
	insights   *analysis.InsightEngine
	cfg        Config
	log        *logger.Entry
}

func New(source MatchSource, names analysis.NameResolver, cfg Config, log *logger.Entry) *Pipeline {
	aggregator := analysis.NewAggregator(names)
	trends := analysis.NewTrendCalculator()
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if cfg.MatchCount <= 0 {
		cfg.MatchCount = 20
	}
	return &Pipeline{
		source:     source,
		normalizer: analysis.NewNormalizer(names, log),
		aggregator: aggregator,
		trends:     trends,
		insights:   analysis.NewInsightEngine(aggregator, trends, analysis.DefaultThresholds()),
		cfg:        cfg,
		log:        log,
	}
}

// Run executes one aggregation for the given Riot ID.
func (p *Pipeline) Run(ctx context.Context, gameName, tagLine string) (*Result, error) {
	account, err := p.source.GetAccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account %s#%s: %w", gameName, tagLine, err)
	}

	// Independent categories fetch in parallel; each is funneled
	// through the same cache/limiter pair.
	var (
		matchIDs  []string
		masteries []riot.MasteryResponse
		entries   []riot.LeagueEntryResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matchIDs, err = p.source.GetMatchIDs(gctx, account.PUUID, p.cfg.MatchCount)
		if err != nil {
			return fmt.Errorf("failed to fetch match list: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		masteries, err = p.source.GetChampionMasteries(gctx, account.PUUID)
		if err != nil {
			// Mastery only seeds zero-game entries; run without it.
			p.log.WithError(err).Warn("mastery fetch failed, continuing without")
			masteries = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		entries, err = p.source.GetLeagueEntries(gctx, account.PUUID)
		if err != nil {
			p.log.WithError(err).Warn("league fetch failed, continuing without")
			entries = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches, rateLimited := p.fetchMatches(ctx, matchIDs)

	records := make([]analysis.MatchRecord, 0, len(matches))
	skipped := 0
	for _, match := range matches {
		rec := p.normalizer.Normalize(match, account.PUUID)
		if rec == nil {
			skipped++
			continue
		}
		records = append(records, *rec)
	}

	// Fold order is chronological so recent-form windows and any
	// persisted intermediates are reproducible.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	mastery := p.normalizer.NormalizeMastery(masteries)

	stats, err := p.aggregator.Aggregate(records, mastery)
	if err != nil {
		return nil, err
	}
	insights, err := p.insights.GenerateInsights(account.PUUID, records, mastery)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logger.Fields{
		"puuid":        shortID(account.PUUID),
		"matches":      len(records),
		"skipped":      skipped,
		"rate_limited": rateLimited,
	}).Info("aggregation run complete")

	return &Result{
		Account:     account,
		Rank:        entries,
		Stats:       stats,
		Trends:      p.trends.CalculateTrends(records),
		Insights:    insights,
		Skipped:     skipped,
		RateLimited: rateLimited,
	}, nil
}

// fetchMatches fans out over match IDs with a bounded worker pool.
// Rate-limit denial stops further fetching and the run continues with
// whatever was collected; other per-match errors skip just that match.
func (p *Pipeline) fetchMatches(ctx context.Context, matchIDs []string) ([]*riot.MatchResponse, bool) {
	jobs := make(chan string, matchChannelBuffer)
	results := make(chan *riot.MatchResponse, matchChannelBuffer)

	var limitedOnce sync.Once
	limited := false

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for matchID := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				match, err := p.source.GetMatch(ctx, matchID)
				if err != nil {
					if errors.Is(err, cache.ErrRateLimited) {
						limitedOnce.Do(func() { limited = true })
						p.log.WithFields(logger.Fields{"match": matchID}).
							Warn("match fetch rate limited, continuing with partial data")
						return
					}
					p.log.WithError(err).WithFields(logger.Fields{"match": matchID}).
						Warn("match fetch failed, skipping")
					continue
				}
				results <- match
			}
		}()
	}

	go func() {
		defer close(jobs)
		// Upstream match lists occasionally repeat IDs across page
		// boundaries; a false positive only costs a skipped duplicate.
		seen := bloom.NewWithEstimates(uint(len(matchIDs))+1, 0.001)
		for _, matchID := range matchIDs {
			if seen.TestString(matchID) {
				continue
			}
			seen.AddString(matchID)
			select {
			case jobs <- matchID:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	matches := make([]*riot.MatchResponse, 0, len(matchIDs))
	for match := range results {
		matches = append(matches, match)
	}
	return matches, limited
}

func shortID(puuid string) string {
	if len(puuid) > 16 {
		return puuid[:16]
	}
	return puuid
}
