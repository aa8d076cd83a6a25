package cmd

import (
	"errors"
	"fmt"
	"os"

	"l1registry/pkg/registry"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

// RunValidate checks that every record parses and carries well-formed IDs. It exits
// non-zero when any record is invalid.
func RunValidate(opts GlobalOptions) {
	cfg := loadConfig(opts)
	store := openStore(cfg)

	folders, err := store.Folders()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list registry")
	}

	invalid := 0
	for _, folder := range folders {
		rec, err := store.Load(folder)
		if errors.Is(err, registry.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			color.Red("%s: %v", folder, err)
			invalid++
			continue
		}
		if errs := registry.ValidateIDs(rec); len(errs) > 0 {
			for _, e := range errs {
				color.Red("%s: %v", folder, e)
			}
			invalid++
		}
	}

	fmt.Printf("\nChecked %d chains, %d invalid\n", len(folders), invalid)
	if invalid > 0 {
		os.Exit(1)
	}
}
