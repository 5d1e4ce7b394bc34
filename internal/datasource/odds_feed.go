package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/config"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/metrics"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// Feed errors
var (
	ErrFixtureNotFound = errors.New("fixture not found in odds feed")
	ErrMalformedOdds   = errors.New("malformed odds in feed payload")
)

// OddsSource fetches market odds and auxiliary match features for upcoming
// fixtures.
type OddsSource interface {
	FetchFixtures(ctx context.Context, from, to time.Time) ([]models.Fixture, error)
	FetchFixtureOdds(ctx context.Context, fixtureID uuid.UUID) (*models.MarketOdds, error)
	Name() string
}

// OddsFeedClient is an OddsSource over the provider's JSON HTTP API.
type OddsFeedClient struct {
	baseURL string
	apiKey  string
	http    *RateLimitedHTTPClient
	logger  *logrus.Logger
}

// NewOddsFeedClient creates a feed client from configuration.
func NewOddsFeedClient(cfg *config.OddsFeedConfig, logger *logrus.Logger) *OddsFeedClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RateLimit

	return &OddsFeedClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    NewRateLimitedHTTPClient(httpCfg, logger),
		logger:  logger,
	}
}

// Name returns the data source name.
func (c *OddsFeedClient) Name() string { return "odds_feed" }

// feedFixture is the provider's wire representation. Odds arrive as decimal
// strings; shopspring keeps the parse exact before the core's float math.
type feedFixture struct {
	ID          string  `json:"id"`
	LeagueID    string  `json:"league_id"`
	HomeTeamID  string  `json:"home_team_id"`
	AwayTeamID  string  `json:"away_team_id"`
	KickoffTime string  `json:"kickoff_time"`
	HomeOdds    *string `json:"home_odds"`
	DrawOdds    *string `json:"draw_odds"`
	AwayOdds    *string `json:"away_odds"`
}

// FetchFixtures retrieves fixtures with odds snapshots in a kickoff window.
func (c *OddsFeedClient) FetchFixtures(ctx context.Context, from, to time.Time) ([]models.Fixture, error) {
	start := time.Now()
	defer func() {
		metrics.OddsFeedLatency.Observe(time.Since(start).Seconds())
	}()

	url := fmt.Sprintf("%s/v1/fixtures?from=%s&to=%s",
		c.baseURL, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))

	resp, err := c.http.Get(ctx, url, c.headers())
	if err != nil {
		return nil, fmt.Errorf("odds feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds feed returned status %d", resp.StatusCode)
	}

	var payload struct {
		Fixtures []feedFixture `json:"fixtures"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode odds feed payload: %w", err)
	}

	fixtures := make([]models.Fixture, 0, len(payload.Fixtures))
	for _, ff := range payload.Fixtures {
		fixture, err := ff.toModel()
		if err != nil {
			// Skip malformed entries rather than failing the batch; the
			// feed regularly carries fixtures without prices yet.
			c.logger.WithError(err).WithField("fixture_id", ff.ID).Debug("Skipping malformed feed fixture")
			continue
		}
		fixtures = append(fixtures, fixture)
	}
	return fixtures, nil
}

// FetchFixtureOdds retrieves the current odds snapshot for one fixture.
func (c *OddsFeedClient) FetchFixtureOdds(ctx context.Context, fixtureID uuid.UUID) (*models.MarketOdds, error) {
	start := time.Now()
	defer func() {
		metrics.OddsFeedLatency.Observe(time.Since(start).Seconds())
	}()

	url := fmt.Sprintf("%s/v1/fixtures/%s/odds", c.baseURL, fixtureID)
	resp, err := c.http.Get(ctx, url, c.headers())
	if err != nil {
		return nil, fmt.Errorf("odds feed request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrFixtureNotFound
	default:
		return nil, fmt.Errorf("odds feed returned status %d", resp.StatusCode)
	}

	var ff feedFixture
	if err := json.NewDecoder(resp.Body).Decode(&ff); err != nil {
		return nil, fmt.Errorf("failed to decode odds payload: %w", err)
	}
	odds, err := ff.parseOdds()
	if err != nil {
		return nil, err
	}
	if odds == nil {
		return nil, ErrFixtureNotFound
	}
	return odds, nil
}

// Close releases the underlying HTTP client.
func (c *OddsFeedClient) Close() error {
	return c.http.Close()
}

func (c *OddsFeedClient) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		h["X-Api-Key"] = c.apiKey
	}
	return h
}

func (ff feedFixture) toModel() (models.Fixture, error) {
	id, err := uuid.Parse(ff.ID)
	if err != nil {
		return models.Fixture{}, fmt.Errorf("bad fixture id %q: %w", ff.ID, err)
	}
	kickoff, err := time.Parse(time.RFC3339, ff.KickoffTime)
	if err != nil {
		return models.Fixture{}, fmt.Errorf("bad kickoff time %q: %w", ff.KickoffTime, err)
	}
	odds, err := ff.parseOdds()
	if err != nil {
		return models.Fixture{}, err
	}

	return models.Fixture{
		ID:          id,
		LeagueID:    ff.LeagueID,
		HomeTeamID:  ff.HomeTeamID,
		AwayTeamID:  ff.AwayTeamID,
		KickoffTime: kickoff.UTC(),
		Odds:        odds,
	}, nil
}

// parseOdds converts the three decimal-string prices. A fixture without a
// full set of prices yields nil odds, not an error.
func (ff feedFixture) parseOdds() (*models.MarketOdds, error) {
	if ff.HomeOdds == nil || ff.DrawOdds == nil || ff.AwayOdds == nil {
		return nil, nil
	}
	parse := func(s string) (float64, error) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedOdds, s)
		}
		f, _ := d.Float64()
		return f, nil
	}

	home, err := parse(*ff.HomeOdds)
	if err != nil {
		return nil, err
	}
	draw, err := parse(*ff.DrawOdds)
	if err != nil {
		return nil, err
	}
	away, err := parse(*ff.AwayOdds)
	if err != nil {
		return nil, err
	}

	odds := &models.MarketOdds{Home: home, Draw: draw, Away: away}
	if !odds.Valid() {
		return nil, fmt.Errorf("%w: prices must exceed 1.0", ErrMalformedOdds)
	}
	return odds, nil
}
