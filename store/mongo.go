// Package store persists pipeline records to MongoDB and serves the read
// queries behind the API.
package store

import (
	"context"
	"fmt"
	"time"

	"agrisight/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the five pipeline collections: imagery, ndvi_results,
// health_assessments, weather_data, pipeline_runs.
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	imagery      *mongo.Collection
	indexResults *mongo.Collection
	assessments  *mongo.Collection
	weatherData  *mongo.Collection
	runs         *mongo.Collection
}

// New connects and ensures indexes.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	db := client.Database(dbName)

	s := &Store{
		client:       client,
		db:           db,
		imagery:      db.Collection("imagery"),
		indexResults: db.Collection("ndvi_results"),
		assessments:  db.Collection("health_assessments"),
		weatherData:  db.Collection("weather_data"),
		runs:         db.Collection("pipeline_runs"),
	}

	// Indexes for the latest/history queries.
	for _, col := range []*mongo.Collection{s.imagery, s.indexResults, s.assessments} {
		if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "runId", Value: 1}, {Key: "sceneId", Value: 1}},
		}); err != nil {
			return nil, err
		}
	}
	if _, err := s.weatherData.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: 1}, {Key: "observedAt", Value: -1}},
	}); err != nil {
		return nil, err
	}
	if _, err := s.runs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "startedAt", Value: -1}},
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) { _ = s.client.Disconnect(ctx) }

// ---- inserts ----

// SaveSceneRecord writes the full record set of one successfully processed
// scene: metadata, index result, assessment. Any write error fails the
// scene, so a partially written scene is never reported as a success.
func (s *Store) SaveSceneRecord(ctx context.Context, meta *models.SceneMeta, idx *models.IndexResult, assessment *models.Assessment) error {
	if _, err := s.imagery.InsertOne(ctx, meta); err != nil {
		return fmt.Errorf("insert scene metadata: %w", err)
	}
	if _, err := s.indexResults.InsertOne(ctx, idx); err != nil {
		return fmt.Errorf("insert index result: %w", err)
	}
	if _, err := s.assessments.InsertOne(ctx, assessment); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// SaveWeather stores one weather observation.
func (s *Store) SaveWeather(ctx context.Context, rec *models.WeatherRecord) error {
	if _, err := s.weatherData.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert weather record: %w", err)
	}
	return nil
}

// SaveRun stores the finalized run record. Runs are immutable; re-running
// a batch produces a new record with a new identifier.
func (s *Store) SaveRun(ctx context.Context, rec *models.RunRecord) error {
	if _, err := s.runs.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// ---- queries ----

// LatestSceneMeta returns the most recently acquired scene metadata.
func (s *Store) LatestSceneMeta(ctx context.Context) (*models.SceneMeta, error) {
	var out models.SceneMeta
	err := s.imagery.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "acquiredAt", Value: -1}})).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LatestIndexResult returns the newest index result.
func (s *Store) LatestIndexResult(ctx context.Context) (*models.IndexResult, error) {
	var out models.IndexResult
	err := s.indexResults.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "computedAt", Value: -1}})).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// IndexHistory returns up to limit index results, newest first.
func (s *Store) IndexHistory(ctx context.Context, limit int64) ([]models.IndexResult, error) {
	cur, err := s.indexResults.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "computedAt", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.IndexResult
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestAssessment returns the newest health assessment.
func (s *Store) LatestAssessment(ctx context.Context) (*models.Assessment, error) {
	var out models.Assessment
	err := s.assessments.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "assessedAt", Value: -1}})).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LatestWeather returns the newest observation, optionally per location.
func (s *Store) LatestWeather(ctx context.Context, location string) (*models.WeatherRecord, error) {
	filter := bson.M{}
	if location != "" {
		filter["location"] = location
	}
	var out models.WeatherRecord
	err := s.weatherData.FindOne(ctx, filter,
		options.FindOne().SetSort(bson.D{{Key: "observedAt", Value: -1}})).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// WeatherHistory returns up to limit observations, newest first.
func (s *Store) WeatherHistory(ctx context.Context, limit int64) ([]models.WeatherRecord, error) {
	cur, err := s.weatherData.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "observedAt", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.WeatherRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Runs returns up to limit run records, newest first.
func (s *Store) Runs(ctx context.Context, limit int64) ([]models.RunRecord, error) {
	cur, err := s.runs.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RunRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RunStats aggregates run outcomes for the metrics endpoint.
func (s *Store) RunStats(ctx context.Context) (*models.RunStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	var stats models.RunStats
	cur, err := s.runs.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var totalMs float64
	for cur.Next(ctx) {
		var r models.RunRecord
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		stats.TotalRuns++
		switch r.Status {
		case models.RunSuccess:
			stats.Succeeded++
		case models.RunPartial:
			stats.Partial++
		default:
			stats.Failed++
		}
		totalMs += float64(r.FinishedAt.Sub(r.StartedAt).Milliseconds())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if stats.TotalRuns > 0 {
		stats.AvgDurationMs = totalMs / float64(stats.TotalRuns)
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.TotalRuns) * 100
	}
	return &stats, nil
}
