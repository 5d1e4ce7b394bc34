package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/datasource"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/metrics"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

const (
	defaultLookahead = 72 * time.Hour
	tickTimeout      = 10 * time.Second
)

// IngestionService pulls upcoming fixtures from an odds source and pushes
// them through the prediction pipeline. Polled fixtures are tracked so live
// stream ticks can reprice them between polls.
//
// Team ratings are looked up in the provided strengths map; teams the map
// does not cover fall back to the neutral rating so unknown sides still
// produce a prediction instead of being dropped.
type IngestionService struct {
	source      datasource.OddsSource
	predictions *PredictionService
	strengths   map[string]models.TeamStrength
	lookahead   time.Duration
	logger      *logrus.Logger

	mu      sync.RWMutex
	tracked map[uuid.UUID]models.Fixture
}

// NewIngestionService creates an ingestion service over the given odds
// source. A non-positive lookahead falls back to the default window.
func NewIngestionService(
	source datasource.OddsSource,
	predictions *PredictionService,
	strengths map[string]models.TeamStrength,
	lookahead time.Duration,
	logger *logrus.Logger,
) *IngestionService {
	if lookahead <= 0 {
		lookahead = defaultLookahead
	}
	if logger == nil {
		logger = logrus.New()
	}
	if strengths == nil {
		strengths = map[string]models.TeamStrength{}
	}
	return &IngestionService{
		source:      source,
		predictions: predictions,
		strengths:   strengths,
		lookahead:   lookahead,
		logger:      logger,
		tracked:     make(map[uuid.UUID]models.Fixture),
	}
}

// IngestOnce fetches fixtures kicking off inside the lookahead window and
// predicts the whole batch. Fetched fixtures replace the tracked set.
func (s *IngestionService) IngestOnce(ctx context.Context) ([]Prediction, error) {
	from := time.Now().UTC()
	to := from.Add(s.lookahead)

	fixtures, err := s.source.FetchFixtures(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching fixtures from %s: %w", s.source.Name(), err)
	}
	metrics.FixturesIngestedTotal.Add(float64(len(fixtures)))

	s.mu.Lock()
	s.tracked = make(map[uuid.UUID]models.Fixture, len(fixtures))
	for _, fixture := range fixtures {
		s.tracked[fixture.ID] = fixture
	}
	s.mu.Unlock()

	predictions, err := s.predictions.PredictBatch(ctx, fixtures, s.resolveStrengths(fixtures))
	if err != nil {
		return nil, fmt.Errorf("predicting ingested batch: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"source":      s.source.Name(),
		"fixtures":    len(fixtures),
		"predictions": len(predictions),
		"window_to":   to,
	}).Info("Ingested fixture batch")
	return predictions, nil
}

// OnTick reprices a tracked fixture from a live odds update. Ticks for
// fixtures outside the tracked set are ignored.
func (s *IngestionService) OnTick(tick datasource.OddsTick) error {
	s.mu.Lock()
	fixture, ok := s.tracked[tick.FixtureID]
	if !ok {
		s.mu.Unlock()
		s.logger.WithField("fixture_id", tick.FixtureID).Debug("Tick for untracked fixture dropped")
		return nil
	}
	odds := tick.Odds
	fixture.Odds = &odds
	s.tracked[tick.FixtureID] = fixture
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	home := s.strengthFor(fixture.HomeTeamID)
	away := s.strengthFor(fixture.AwayTeamID)
	if _, err := s.predictions.Predict(ctx, fixture, home, away); err != nil {
		return fmt.Errorf("repricing fixture %s: %w", fixture.ID, err)
	}
	metrics.OddsTicksProcessedTotal.Inc()
	return nil
}

// AttachStream registers this service as a tick handler on the stream.
func (s *IngestionService) AttachStream(stream *datasource.StreamClient) {
	stream.AddHandler(s.OnTick)
}

// TrackedFixtureIDs returns the IDs of the fixtures from the last poll,
// suitable for a stream subscription.
func (s *IngestionService) TrackedFixtureIDs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.tracked))
	for id := range s.tracked {
		ids = append(ids, id)
	}
	return ids
}

func (s *IngestionService) resolveStrengths(fixtures []models.Fixture) map[string]models.TeamStrength {
	resolved := make(map[string]models.TeamStrength, 2*len(fixtures))
	for _, fixture := range fixtures {
		resolved[fixture.HomeTeamID] = s.strengthFor(fixture.HomeTeamID)
		resolved[fixture.AwayTeamID] = s.strengthFor(fixture.AwayTeamID)
	}
	return resolved
}

func (s *IngestionService) strengthFor(teamID string) models.TeamStrength {
	if strength, ok := s.strengths[teamID]; ok {
		return strength
	}
	return models.NeutralStrength(teamID)
}
