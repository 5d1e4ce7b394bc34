package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*OddsFeedClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	client := NewOddsFeedClient(&config.OddsFeedConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		TimeoutSeconds: 5,
		MaxRetries:     0,
		RateLimit:      100,
	}, logger)
	t.Cleanup(func() { client.Close() })

	return client, server
}

func TestFetchFixtures(t *testing.T) {
	fixtureID := uuid.New()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"fixtures": [
			{
				"id": "` + fixtureID.String() + `",
				"league_id": "EPL",
				"home_team_id": "ARS",
				"away_team_id": "CHE",
				"kickoff_time": "2026-09-12T15:00:00Z",
				"home_odds": "2.10",
				"draw_odds": "3.40",
				"away_odds": "3.60"
			},
			{
				"id": "not-a-uuid",
				"league_id": "EPL",
				"kickoff_time": "2026-09-12T15:00:00Z"
			}
		]}`))
	}))

	fixtures, err := client.FetchFixtures(context.Background(),
		time.Now(), time.Now().Add(48*time.Hour))
	require.NoError(t, err)

	// Malformed entry is skipped, not fatal.
	require.Len(t, fixtures, 1)

	f := fixtures[0]
	assert.Equal(t, fixtureID, f.ID)
	assert.Equal(t, "EPL", f.LeagueID)
	require.NotNil(t, f.Odds)
	assert.InDelta(t, 2.10, f.Odds.Home, 1e-9)
	assert.InDelta(t, 3.40, f.Odds.Draw, 1e-9)
	assert.InDelta(t, 3.60, f.Odds.Away, 1e-9)
}

func TestFetchFixturesWithoutPrices(t *testing.T) {
	fixtureID := uuid.New()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fixtures": [{
			"id": "` + fixtureID.String() + `",
			"league_id": "EPL",
			"kickoff_time": "2026-09-12T15:00:00Z"
		}]}`))
	}))

	fixtures, err := client.FetchFixtures(context.Background(),
		time.Now(), time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Nil(t, fixtures[0].Odds)
}

func TestFetchFixtureOdds(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantHome   float64
	}{
		{
			name:   "valid odds",
			status: http.StatusOK,
			body:   `{"id": "x", "home_odds": "1.85", "draw_odds": "3.50", "away_odds": "4.20"}`,
			wantHome: 1.85,
		},
		{
			name:    "fixture not found",
			status:  http.StatusNotFound,
			body:    `{}`,
			wantErr: ErrFixtureNotFound,
		},
		{
			name:    "odds below one",
			status:  http.StatusOK,
			body:    `{"id": "x", "home_odds": "0.95", "draw_odds": "3.50", "away_odds": "4.20"}`,
			wantErr: ErrMalformedOdds,
		},
		{
			name:    "unparseable price",
			status:  http.StatusOK,
			body:    `{"id": "x", "home_odds": "abc", "draw_odds": "3.50", "away_odds": "4.20"}`,
			wantErr: ErrMalformedOdds,
		},
		{
			name:    "prices missing",
			status:  http.StatusOK,
			body:    `{"id": "x"}`,
			wantErr: ErrFixtureNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			odds, err := client.FetchFixtureOdds(context.Background(), uuid.New())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, odds)
			assert.InDelta(t, tt.wantHome, odds.Home, 1e-9)
		})
	}
}

func TestStreamMessageToTick(t *testing.T) {
	fixtureID := uuid.New()
	home, draw, away := "2.00", "3.30", "3.90"

	msg := streamMessage{
		Op:        "odds",
		FixtureID: fixtureID.String(),
		HomeOdds:  &home,
		DrawOdds:  &draw,
		AwayOdds:  &away,
	}

	tick, err := msg.toTick()
	require.NoError(t, err)
	assert.Equal(t, fixtureID, tick.FixtureID)
	assert.InDelta(t, 3.30, tick.Odds.Draw, 1e-9)

	msg.DrawOdds = nil
	_, err = msg.toTick()
	require.ErrorIs(t, err, ErrMalformedOdds)
}
