package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"spendlens/internal/amqp"
	"spendlens/internal/analytics"
	"spendlens/internal/cli"
	"spendlens/internal/filter"
	"spendlens/internal/log"
	"spendlens/internal/services"
	"spendlens/internal/views"
)

func main() {
	viewFlag := flag.String("view", "overview", "view to print: overview, categories, suppliers, locations, pareto, bands, segments, drill, seasonality, yoy, trend, tail, consolidation, stats")
	segmentFlag := flag.String("segment", "", "segment name for the drill view")
	yearAFlag := flag.Int("year-a", 0, "baseline year for the yoy view")
	yearBFlag := flag.Int("year-b", 0, "comparison year for the yoy view")
	categoriesFlag := flag.String("categories", "", "comma-separated category filter")
	suppliersFlag := flag.String("suppliers", "", "comma-separated supplier filter")
	locationsFlag := flag.String("locations", "", "comma-separated location filter")
	yearsFlag := flag.String("years", "", "comma-separated year filter")
	fromFlag := flag.String("from", "", "start date filter (YYYY-MM-DD)")
	toFlag := flag.String("to", "", "end date filter (YYYY-MM-DD)")
	resetFlag := flag.Bool("reset-filters", false, "clear all persisted filters before rendering")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := cli.InitBackend(ctx, logger, cfg)
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// Notifications are optional for the CLI: a missing broker just
	// means no out-of-process refresh.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without notifications", log.FieldError, err)
		} else {
			publisher = client
		}
	}

	filters := filter.NewStore(ctx, result.Backend)
	engine := views.NewEngine(filters, cfg.FiscalYear, cfg.CacheSize)
	svc := services.NewAnalyticsService(result.Backend, filters, engine, publisher, logger)
	defer svc.Close()

	if _, err := svc.LoadDataset(ctx); err != nil {
		logger.Error("Failed to load dataset", log.FieldError, err)
		os.Exit(1)
	}

	if *resetFlag {
		if err := svc.ResetFilters(ctx); err != nil {
			logger.Error("Failed to reset filters", log.FieldError, err)
			os.Exit(1)
		}
	}

	if patch, ok := patchFromFlags(*categoriesFlag, *suppliersFlag, *locationsFlag, *yearsFlag, *fromFlag, *toFlag); ok {
		if err := svc.UpdateFilters(ctx, patch); err != nil {
			logger.Error("Failed to apply filters", log.FieldError, err)
			os.Exit(1)
		}
	}

	out, err := render(engine, cfg.TailThresholdPercent, cfg.TopSuppliers, *viewFlag, *segmentFlag, *yearAFlag, *yearBFlag)
	if err != nil {
		logger.Error("Failed to render view", "view", *viewFlag, log.FieldError, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("Failed to encode output", log.FieldError, err)
		os.Exit(1)
	}
}

func patchFromFlags(categories, suppliers, locations, years, from, to string) (filter.Patch, bool) {
	var p filter.Patch
	touched := false

	set := func(raw string, dst **[]string) {
		if raw == "" {
			return
		}
		values := splitList(raw)
		*dst = &values
		touched = true
	}
	set(categories, &p.Categories)
	set(suppliers, &p.Suppliers)
	set(locations, &p.Locations)
	set(years, &p.Years)

	if from != "" || to != "" {
		p.DateRange = &filter.DateRange{Start: from, End: to}
		touched = true
	}

	return p, touched
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func render(engine *views.Engine, tailThreshold float64, topSuppliers int, view, segment string, yearA, yearB int) (any, error) {
	switch view {
	case "overview":
		return engine.Overview(), nil
	case "categories":
		return engine.SpendByCategory(), nil
	case "suppliers":
		return analytics.TopN(engine.SpendBySupplier(), topSuppliers), nil
	case "locations":
		return engine.SpendByLocation(), nil
	case "pareto":
		return engine.Pareto(), nil
	case "bands":
		return engine.Bands(), nil
	case "segments":
		return engine.Segments(), nil
	case "drill":
		if segment == "" {
			return nil, fmt.Errorf("drill view requires -segment")
		}
		rows := engine.DrillSegment(segment)
		if rows == nil {
			return nil, fmt.Errorf("unknown segment %q", segment)
		}
		return rows, nil
	case "seasonality":
		return engine.Seasonality(), nil
	case "yoy":
		if yearA == 0 || yearB == 0 {
			return nil, fmt.Errorf("yoy view requires -year-a and -year-b")
		}
		return engine.CompareYears(yearA, yearB), nil
	case "trend":
		return engine.MonthlyTrend(), nil
	case "tail":
		return engine.TailSpend(tailThreshold), nil
	case "consolidation":
		return engine.Consolidation(), nil
	case "stats":
		return engine.Stats(), nil
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}
}
