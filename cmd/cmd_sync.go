package cmd

import (
	"context"
	"os"

	"l1registry/pkg/chwrapper"
	"l1registry/pkg/registry"
	"l1registry/pkg/registrysyncer"

	"github.com/rs/zerolog/log"
)

// RunSyncClickHouse exports the registry into ClickHouse. With repoURL set, the registry
// is cloned from git instead of read from the local registry path.
func RunSyncClickHouse(opts GlobalOptions, repoURL string, wipe bool) {
	cfg := loadConfig(opts)
	ctx := context.Background()

	store := registry.NewStore(cfg.RegistryPath)
	if repoURL != "" {
		dir, dataDir, err := registrysyncer.CloneRegistry(ctx, repoURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to clone registry")
		}
		defer os.RemoveAll(dir)
		store = registry.NewStore(dataDir)
	}

	conn, err := chwrapper.Connect(ctx, chwrapper.Options{
		Addr:     cfg.ClickHouse.Addr,
		Database: cfg.ClickHouse.Database,
		Username: cfg.ClickHouse.Username,
		Password: cfg.ClickHouse.Password,
		Debug:    opts.Debug,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect")
	}
	defer conn.Close()

	if wipe {
		if err := registrysyncer.WipeRegistry(ctx, conn); err != nil {
			log.Fatal().Err(err).Msg("Failed to wipe l1_registry")
		}
	}

	n, err := registrysyncer.SyncRegistry(ctx, conn, store)
	if err != nil {
		log.Fatal().Err(err).Msg("Registry sync failed")
	}
	log.Info().Int("rows", n).Msg("Registry exported to ClickHouse")
}
