package cmd

import (
	"fmt"

	"l1registry/pkg/logos"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

// RunFixLogos replaces or clears placeholder logos.
func RunFixLogos(opts GlobalOptions, dryRun bool) {
	cfg := loadConfig(opts)
	store := openStore(cfg)

	res, err := logos.Repair(store, logos.RepairOptions{
		Placeholders: logos.NewPlaceholderSet(cfg.Placeholders),
		DryRun:       dryRun,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Logo repair failed")
	}

	fmt.Println()
	verb := "Fixed"
	if dryRun {
		verb = "Would fix"
	}
	color.Green("%s %s chains", verb, humanize.Comma(int64(res.Fixed)))
	color.Green("Copied %s token logos to main logo", humanize.Comma(int64(res.LogosCopied)))
	if len(res.Errors) > 0 {
		color.Red("%d chains could not be read", len(res.Errors))
	}
}

// RunCheckLogos reports records whose main logo is empty while a token logo is available.
// With fix set, the token logo is copied up.
func RunCheckLogos(opts GlobalOptions, fix bool) {
	cfg := loadConfig(opts)
	store := openStore(cfg)

	res, err := logos.Audit(store, fix)
	if err != nil {
		log.Fatal().Err(err).Msg("Logo audit failed")
	}

	for _, f := range res.Findings {
		fmt.Printf("%s: %s\n", f.Folder, f.Logo)
	}
	fmt.Printf("\nTotal chains needing logo copy: %d\n", len(res.Findings))
	if fix && res.Fixed > 0 {
		color.Green("Applied logo fix to %d chains", res.Fixed)
	}
	if len(res.Errors) > 0 {
		color.Red("%d chains could not be read", len(res.Errors))
	}
}
