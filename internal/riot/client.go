package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"rift-insights/internal/cache"
	"rift-insights/internal/config"
	"rift-insights/internal/logger"
)

const ddragonBaseURL = "https://ddragon.leagueoflegends.com"

// Client is the upstream Riot API client. Every call goes through the
// cache, which in turn consults the rate limiter on a miss; the client
// itself never talks to the network without admission.
type Client struct {
	apiKey       string
	httpClient   *http.Client
	store        *cache.Cache
	regionBase   string
	platformBase string
	ttl          config.TTLConfig
	log          *logger.Entry
}

// NewClient creates a Riot API client for the configured region and
// platform.
func NewClient(apiKey string, store *cache.Cache, cfg config.RiotConfig, ttl config.TTLConfig, log *logger.Entry) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("riot API key not set")
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:        store,
		regionBase:   fmt.Sprintf("https://%s.api.riotgames.com", cfg.Region),
		platformBase: fmt.Sprintf("https://%s.api.riotgames.com", cfg.Platform),
		ttl:          ttl,
		log:          log,
	}, nil
}

// get fetches a URL through the cache with the given TTL class and
// unmarshals the payload.
func (c *Client) get(ctx context.Context, rawURL string, ttl time.Duration, result interface{}) error {
	payload, err := c.store.Fetch(ctx, rawURL, ttl, func(ctx context.Context) ([]byte, error) {
		return c.doRequest(ctx, rawURL)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, result)
}

// doRequest performs the live upstream call. Called only after the
// cache granted admission.
func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-Riot-Token", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		// Our limiter should prevent this; if the provider still says
		// no, surface it rather than retrying into the same wall.
		retryAfter := resp.Header.Get("Retry-After")
		return nil, fmt.Errorf("provider returned 429, retry-after %s", retryAfter)
	case http.StatusForbidden:
		return nil, fmt.Errorf("provider returned 403 - check that the API key is valid")
	case http.StatusNotFound:
		return nil, fmt.Errorf("provider returned 404 - resource does not exist")
	default:
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// GetAccountByRiotID fetches account info by Riot ID (gameName#tagLine).
func (c *Client) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*AccountResponse, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionBase, url.PathEscape(gameName), url.PathEscape(tagLine))

	var account AccountResponse
	if err := c.get(ctx, u, c.ttl.Identity, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetMatchIDs fetches recent match IDs for a player.
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?count=%d",
		c.regionBase, puuid, count)

	var matchIDs []string
	if err := c.get(ctx, u, c.ttl.Identity, &matchIDs); err != nil {
		return nil, err
	}
	return matchIDs, nil
}

// GetMatch fetches match details. Completed matches are immutable, so
// this uses the long match-detail TTL.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*MatchResponse, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.regionBase, matchID)

	var match MatchResponse
	if err := c.get(ctx, u, c.ttl.MatchDetail, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// GetChampionMasteries fetches all champion mastery entries for a player.
func (c *Client) GetChampionMasteries(ctx context.Context, puuid string) ([]MasteryResponse, error) {
	u := fmt.Sprintf("%s/lol/champion-mastery/v4/champion-masteries/by-puuid/%s",
		c.platformBase, puuid)

	var masteries []MasteryResponse
	if err := c.get(ctx, u, c.ttl.Identity, &masteries); err != nil {
		return nil, err
	}
	return masteries, nil
}

// GetLeagueEntries fetches ranked league entries for a player.
func (c *Client) GetLeagueEntries(ctx context.Context, puuid string) ([]LeagueEntryResponse, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.platformBase, puuid)

	var entries []LeagueEntryResponse
	if err := c.get(ctx, u, c.ttl.Identity, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetCurrentGame fetches the player's live game, if any. Live data is
// the most volatile payload and uses the short TTL class.
func (c *Client) GetCurrentGame(ctx context.Context, puuid string) (*CurrentGameResponse, error) {
	u := fmt.Sprintf("%s/lol/spectator/v5/active-games/by-summoner/%s", c.platformBase, puuid)

	var game CurrentGameResponse
	if err := c.get(ctx, u, c.ttl.LiveGame, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// fetchChampionData retrieves the Data Dragon champion list under the
// static TTL class.
func (c *Client) fetchChampionData(ctx context.Context) ([]byte, error) {
	versionsURL := ddragonBaseURL + "/api/versions.json"
	payload, err := c.store.Fetch(ctx, versionsURL, c.ttl.Static, func(ctx context.Context) ([]byte, error) {
		return c.doRequest(ctx, versionsURL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch versions: %w", err)
	}

	var versions []string
	if err := json.Unmarshal(payload, &versions); err != nil {
		return nil, fmt.Errorf("failed to parse versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no versions available")
	}

	champURL := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", ddragonBaseURL, versions[0])
	return c.store.Fetch(ctx, champURL, c.ttl.Static, func(ctx context.Context) ([]byte, error) {
		return c.doRequest(ctx, champURL)
	})
}
