package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const queryTimeout = 5 * time.Second

func queryLimit(r *http.Request, def int64) int64 {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 || n > 500 {
		return def
	}
	return n
}

func respondLookup(w http.ResponseWriter, v any, err error) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		writeErr(w, http.StatusNotFound, "no records yet")
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "query failed")
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

// handleLatestImagery returns metadata of the most recently acquired scene.
func (a *App) handleLatestImagery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	out, err := a.store.LatestSceneMeta(ctx)
	respondLookup(w, out, err)
}

// handleLatestIndex returns the newest vegetation index result.
func (a *App) handleLatestIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	out, err := a.store.LatestIndexResult(ctx)
	respondLookup(w, out, err)
}

// handleIndexHistory returns recent index results, newest first.
func (a *App) handleIndexHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	out, err := a.store.IndexHistory(ctx, queryLimit(r, 30))
	respondLookup(w, out, err)
}

// handleLatestAssessment returns the newest health assessment.
func (a *App) handleLatestAssessment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	out, err := a.store.LatestAssessment(ctx)
	respondLookup(w, out, err)
}

// handleLatestWeather returns the newest weather record, optionally
// filtered by ?location=.
func (a *App) handleLatestWeather(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	out, err := a.store.LatestWeather(ctx, r.URL.Query().Get("location"))
	respondLookup(w, out, err)
}

// handleWeatherHistory returns recent weather records, newest first.
func (a *App) handleWeatherHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	out, err := a.store.WeatherHistory(ctx, queryLimit(r, 30))
	respondLookup(w, out, err)
}

// handleRuns lists recent pipeline runs, newest first.
func (a *App) handleRuns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	out, err := a.store.Runs(ctx, queryLimit(r, 20))
	respondLookup(w, out, err)
}

// handleRunStats returns aggregate statistics over stored runs.
func (a *App) handleRunStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	out, err := a.store.RunStats(ctx)
	respondLookup(w, out, err)
}

// handleTriggerRun starts a pipeline run in the background unless one is
// already in flight.
func (a *App) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if !a.runMu.TryLock() {
		writeJSON(w, http.StatusConflict, triggerResp{Status: "already running"})
		return
	}
	go func() {
		defer a.runMu.Unlock()
		a.orch.Run(context.Background(), a.batch())
	}()
	writeJSON(w, http.StatusAccepted, triggerResp{Status: "started"})
}
