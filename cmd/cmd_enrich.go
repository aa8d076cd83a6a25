package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"l1registry/pkg/cache"
	"l1registry/pkg/enricher"
	"l1registry/pkg/glacier"

	"github.com/rs/zerolog/log"
)

// RunEnrich runs the enrichment pass over the whole registry, or over one folder when
// single is set.
func RunEnrich(opts GlobalOptions, single string) {
	cfg := loadConfig(opts)
	if err := cfg.RequireAPIKey(); err != nil {
		log.Fatal().Err(err).Msg("Cannot enrich registry")
	}
	store := openStore(cfg)

	clientOpts := glacier.ClientOptions{
		BaseURL:     cfg.Glacier.APIBase,
		APIKey:      cfg.Glacier.APIKey,
		Network:     cfg.Glacier.Network,
		Timeout:     cfg.Timeout(),
		SnapshotTTL: cfg.Cache.SnapshotTTL,
	}
	if cfg.Cache.Dir != "" && cfg.Cache.SnapshotTTL > 0 {
		c, err := cache.New(cfg.Cache.Dir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open cache")
		}
		defer func() {
			log.Debug().Msg("Cache metrics:\n" + c.GetMetrics())
			c.Close()
		}()
		clientOpts.Cache = c
	}

	client, err := glacier.NewClient(clientOpts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Glacier client")
	}

	log.Info().
		Str("apiBase", cfg.Glacier.APIBase).
		Str("apiKey", cfg.MaskedAPIKey()).
		Str("registry", cfg.RegistryPath).
		Msg("Starting registry enrichment")

	e := enricher.New(store, client, enricher.Options{
		RequestDelay: cfg.RequestDelay(),
		SybilTable:   enricher.DefaultSybilTable().With(cfg.SybilResistance),
	})

	ctx := context.Background()
	start := time.Now()

	var res *enricher.Result
	if single != "" {
		res = e.RunSingle(ctx, single)
	} else {
		res, err = e.RunBatch(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Enrichment failed")
		}
	}

	if err := enricher.WriteReport(cfg.Report.Path, res); err != nil {
		log.Error().Err(err).Msg("Failed to write report")
	} else {
		log.Info().Msgf("Report saved to: %s", cfg.Report.Path)
	}
	written, err := enricher.WriteErrorLog(cfg.Report.ErrorLogPath, res.Errors)
	if err != nil {
		log.Error().Err(err).Msg("Failed to write error log")
	} else if written {
		log.Info().Msgf("Errors logged to: %s", cfg.Report.ErrorLogPath)
	}

	fmt.Println()
	enricher.PrintSummary(os.Stdout, res, time.Since(start))
}
