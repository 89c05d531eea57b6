package main

import (
	"context"

	"github.com/rhyrak/go-allocate/internal/allocator"
	"github.com/rhyrak/go-allocate/internal/csvio"
	"github.com/rhyrak/go-allocate/internal/logger"
)

// allocate loads the uploaded snapshot, runs the engine and stores the
// outcome. Each run owns its store.
func (s *server) allocate(runID string, cfg allocator.Configuration) {
	ctx := context.Background()
	log := logger.WithField("run", runID)

	store, err := csvio.LoadStore(ctx, &cfg)
	s.removeUploads(runID)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected input")
		if err := s.runs.Fail(ctx, runID, err.Error()); err != nil {
			log.Error().Err(err).Msg("Failed to store run")
		}
		return
	}

	engine, err := allocator.NewEngineFromConfiguration(store, &cfg, allocator.WithLogger(log))
	if err != nil {
		log.Warn().Err(err).Msg("Rejected configuration")
		if err := s.runs.Fail(ctx, runID, err.Error()); err != nil {
			log.Error().Err(err).Msg("Failed to store run")
		}
		return
	}
	result := engine.Run(ctx)

	data, err := csvio.ExportAllocationsString(store)
	if err != nil {
		log.Error().Err(err).Msg("Failed to export allocations")
		if err := s.runs.Fail(ctx, runID, err.Error()); err != nil {
			log.Error().Err(err).Msg("Failed to store run")
		}
		return
	}
	_, checks := allocator.Validate(store)
	report := csvio.Summary(store, result) + checks

	if err := s.runs.Finish(ctx, runID, result.Outcome.String(), string(result.StuckStudent), data, report); err != nil {
		log.Error().Err(err).Msg("Failed to store run")
		return
	}
	log.Info().Str("outcome", result.Outcome.String()).Msg("Run stored")
}
