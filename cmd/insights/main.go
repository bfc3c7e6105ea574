package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"rift-insights/internal/analysis"
	"rift-insights/internal/cache"
	"rift-insights/internal/config"
	"rift-insights/internal/logger"
	"rift-insights/internal/pipeline"
	"rift-insights/internal/ratelimit"
	"rift-insights/internal/riot"
	"rift-insights/internal/store"
)

func main() {
	// Load .env file - try multiple locations
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	riotID := flag.String("riot-id", "", "Riot ID to analyze (e.g., 'Player#NA1')")
	count := flag.Int("count", 0, "Number of matches to analyze (overrides config)")
	configPath := flag.String("config", "", "Path to config file")
	save := flag.Bool("save", false, "Persist the snapshot when DATABASE_URL is set")
	predictDays := flag.Int("predict", 0, "Extrapolate performance this many days ahead")
	flag.Parse()

	if *riotID == "" || !strings.Contains(*riotID, "#") {
		fmt.Println("Usage:")
		fmt.Println("  insights --riot-id='Player#NA1' [--count=20] [--save] [--predict=7]")
		fmt.Println()
		fmt.Println("RIOT_API_KEY must be set in the environment or .env file.")
		os.Exit(1)
	}
	parts := strings.SplitN(*riotID, "#", 2)
	gameName, tagLine := parts[0], parts[1]

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *count > 0 {
		cfg.Pipeline.MatchCount = *count
	}

	logs := logger.New()
	if err := logs.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	mainLog := logs.WithComponent("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	limiter := ratelimit.New(ratelimit.ProfileByName(cfg.Riot.QuotaProfile))
	upstream := cache.New(limiter, cfg.Cache.MaxEntries, logs.WithComponent("cache"))
	upstream.StartSweeper(cfg.Cache.SweepInterval)
	defer upstream.Stop()

	client, err := riot.NewClient(cfg.Riot.APIKey, upstream, cfg.Riot, cfg.Cache.TTL, logs.WithComponent("riot"))
	if err != nil {
		log.Fatalf("Failed to create Riot client: %v", err)
	}

	registry := riot.NewChampionRegistry()
	if err := registry.Refresh(ctx, client); err != nil {
		mainLog.WithError(err).Warn("champion registry refresh failed, using embedded data")
	}

	p := pipeline.New(client, registry, pipeline.Config{
		MatchCount: cfg.Pipeline.MatchCount,
		Workers:    cfg.Pipeline.Workers,
	}, logs.WithComponent("pipeline"))

	result, err := p.Run(ctx, gameName, tagLine)
	if err != nil {
		log.Fatalf("Aggregation failed: %v", err)
	}

	printReport(result, *predictDays)

	// Not being in a game is a 404 upstream; only report success.
	if game, err := client.GetCurrentGame(ctx, result.Account.PUUID); err == nil {
		fmt.Printf("\nCurrently in a %s game (%dm elapsed).\n", game.GameMode, game.GameLength/60)
	}

	if *save {
		if cfg.Database.URL == "" {
			mainLog.Warn("--save given but DATABASE_URL is not set, skipping persistence")
			return
		}
		db, err := store.New(ctx, cfg.Database.URL, logs.WithComponent("store"))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		id, err := db.SaveSnapshot(ctx, result.Account.PUUID, gameName, tagLine, result.Stats, result.Trends)
		if err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}
		fmt.Printf("\nSnapshot %d saved.\n", id)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	cfg.Riot.APIKey = os.Getenv("RIOT_API_KEY")
	if cfg.Riot.APIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY not set")
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	return cfg, nil
}

func printReport(result *pipeline.Result, predictDays int) {
	fmt.Printf("\n=== %s#%s ===\n", result.Account.GameName, result.Account.TagLine)
	var solo *riot.LeagueEntryResponse
	for i := range result.Rank {
		entry := &result.Rank[i]
		if entry.QueueType != "RANKED_SOLO_5x5" {
			continue
		}
		solo = entry
		fmt.Printf("Rank: %s %s (%d LP, %dW/%dL)\n",
			entry.Tier, entry.Rank, entry.LeaguePoints, entry.Wins, entry.Losses)
	}
	if result.RateLimited {
		fmt.Println("Note: quota exhausted mid-run, results cover a subset of matches.")
	}
	if result.Skipped > 0 {
		fmt.Printf("Note: %d malformed match(es) skipped.\n", result.Skipped)
	}

	fmt.Println("\nChampions:")
	fmt.Printf("  %-16s %5s %6s %6s %6s %6s  %s\n",
		"Champion", "Games", "Win%", "KDA", "CS", "Grade", "Form")
	for i, s := range result.Stats {
		if i >= 10 {
			break
		}
		fmt.Printf("  %-16s %5d %5.1f%% %6.2f %6.1f %6s  %s\n",
			s.ChampionName, s.Games, s.WinRate, s.AvgKDA, s.AvgCS, s.Grade, formString(s.RecentForm))
	}

	if in := result.Insights; in != nil {
		if len(in.PrimaryRoles) > 0 {
			fmt.Printf("\nPrimary roles: %s\n", strings.Join(in.PrimaryRoles, ", "))
		}
		for _, s := range in.Strengths {
			fmt.Printf("  + %s\n", s)
		}
		for _, s := range in.Improvements {
			fmt.Printf("  - %s\n", s)
		}
		for _, rec := range in.Recommendations {
			fmt.Printf("  * %s: %s (%.1f%% over %d games)\n",
				rec.ChampionName, rec.Reason, rec.WinRate, rec.Games)
		}
		if in.PredictedRank.Tier != "" {
			line := fmt.Sprintf("Predicted rank: %s %s (confidence %.0f%%)",
				in.PredictedRank.Tier, in.PredictedRank.Division, in.PredictedRank.Confidence*100)
			if solo != nil {
				switch cmp := riot.CompareRanks(in.PredictedRank.Tier, in.PredictedRank.Division, solo.Tier, solo.Rank); {
				case cmp > 0:
					line += " - above current rank"
				case cmp < 0:
					line += " - below current rank"
				}
			}
			fmt.Println("\n" + line)
		}
	}

	if len(result.Trends) > 0 {
		fmt.Println("\nDaily performance:")
		for _, p := range result.Trends {
			fmt.Printf("  %s  %2d game(s)  score %6.1f\n",
				p.Date.Format("2006-01-02"), p.Games, p.Performance)
		}
		if predictDays > 0 {
			calc := analysis.NewTrendCalculator()
			fmt.Printf("\nProjection (%s):\n", calc.Direction(result.Trends))
			for _, p := range calc.Predict(result.Trends, predictDays) {
				fmt.Printf("  %s  score %6.1f (projected)\n",
					p.Date.Format("2006-01-02"), p.Performance)
			}
		}
	}
}

func formString(form []bool) string {
	if len(form) == 0 {
		return "-"
	}
	var b strings.Builder
	for _, win := range form {
		if win {
			b.WriteByte('W')
		} else {
			b.WriteByte('L')
		}
	}
	return b.String()
}
