package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rhyrak/go-allocate/internal/allocator"
	"github.com/rhyrak/go-allocate/internal/csvio"
	"github.com/rhyrak/go-allocate/internal/logger"
	"github.com/rhyrak/go-allocate/internal/tracing"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	students := flag.String("students", "", "students CSV")
	courses := flag.String("courses", "", "courses CSV")
	courseGroups := flag.String("coursegroups", "", "course groups CSV")
	out := flag.String("out", "", "allocation CSV to write")
	seed := flag.Int64("seed", 0, "tie-break seed (0 seeds from the clock)")
	flag.Parse()

	cfg, err := allocator.LoadConfiguration(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(2)
	}
	override(&cfg.StudentsFile, *students)
	override(&cfg.CoursesFile, *courses)
	override(&cfg.CourseGroupsFile, *courseGroups)
	override(&cfg.ExportFile, *out)
	if *seed != 0 {
		cfg.Seed = *seed
	}

	logger.Configure(logger.Config{Level: logger.LogLevel(cfg.Logging.Level), Pretty: cfg.Logging.Pretty})
	if cfg.TraceFile != "" {
		if err := tracing.Init("go-allocate", "0.1.0", cfg.TraceFile); err != nil {
			logger.Warn().Err(err).Msg("Tracing disabled")
		}
	}

	ctx := context.Background()

	// Parse and validate students, courses and course groups
	store, err := csvio.LoadStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load input")
		os.Exit(2)
	}
	logger.Info().
		Int("students", len(store.Students)).
		Int("courses", len(store.Courses)).
		Int("groups", len(store.Groups)).
		Msg("Loaded input")

	engine, err := allocator.NewEngineFromConfiguration(store, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid reward table")
		os.Exit(2)
	}
	start := time.Now()
	result := engine.Run(ctx)
	elapsed := time.Since(start)

	// Partial allocations are written out too so the operator can inspect them
	if err := csvio.ExportAllocations(store, cfg.ExportFile); err != nil {
		logger.Error().Err(err).Msg("Failed to export allocations")
		os.Exit(1)
	}
	if cfg.CoursesExportFile != "" {
		if err := csvio.ExportCourses(store, cfg.CoursesExportFile); err != nil {
			logger.Error().Err(err).Msg("Failed to export courses")
			os.Exit(1)
		}
	}

	csvio.PrintSummary(os.Stdout, store, result)
	valid, msg := allocator.Validate(store)
	os.Stdout.WriteString(msg)

	logger.Info().
		Str("outcome", result.Outcome.String()).
		Bool("valid", valid).
		Int("grants", result.Grants).
		Dur("elapsed", elapsed).
		Str("export", cfg.ExportFile).
		Msg("Done")

	if err := result.Err(); err != nil {
		logger.Error().Err(err).Msg("Instance is infeasible, fix the input data")
		os.Exit(1)
	}
}

func override(field *string, value string) {
	if value != "" {
		*field = value
	}
}
