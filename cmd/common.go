package cmd

import (
	"l1registry/pkg/config"
	"l1registry/pkg/registry"

	"github.com/rs/zerolog/log"
)

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath   string
	RegistryPath string
	Debug        bool
}

// loadConfig loads the configuration and applies the --registry override.
func loadConfig(opts GlobalOptions) config.Config {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if opts.RegistryPath != "" {
		cfg.RegistryPath = opts.RegistryPath
	}
	return cfg
}

func openStore(cfg config.Config) *registry.Store {
	store := registry.NewStore(cfg.RegistryPath)
	if _, err := store.Folders(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open registry")
	}
	return store
}
