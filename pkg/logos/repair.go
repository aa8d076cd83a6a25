package logos

import (
	"errors"

	"l1registry/pkg/registry"

	"github.com/rs/zerolog/log"
)

// Change describes what the repair pass did to one record.
type Change struct {
	Folder string `json:"folder"`
	// Logo is the new primary logo when the old one was a placeholder.
	Logo          string `json:"logo,omitempty"`
	LogoReplaced  bool   `json:"logoReplaced"`
	LogoCopied    bool   `json:"logoCopied"`
	TokensCleared int    `json:"tokensCleared"`
}

func (c Change) Modified() bool {
	return c.LogoReplaced || c.TokensCleared > 0
}

type RepairOptions struct {
	Placeholders PlaceholderSet
	// DryRun reports the changes without writing any record.
	DryRun bool
}

type RepairResult struct {
	Fixed       int                    `json:"fixed"`
	LogosCopied int                    `json:"logosCopied"`
	Changes     []Change               `json:"changes"`
	Errors      []registry.RecordError `json:"errors"`
}

// RepairRecord replaces a placeholder primary logo with the first usable token logo, or
// clears it when there is none, and clears placeholder token logos. Matching is exact.
func RepairRecord(rec *registry.ChainRecord, placeholders PlaceholderSet) Change {
	var change Change

	if placeholders.Contains(rec.Logo()) {
		replacement := ""
		for _, chain := range rec.Chains() {
			if uri := chain.NativeToken().Logo(); uri != "" && !placeholders.Contains(uri) {
				replacement = uri
				break
			}
		}
		rec.SetLogo(replacement)
		change.Logo = replacement
		change.LogoReplaced = true
		change.LogoCopied = replacement != ""
	}

	for _, chain := range rec.Chains() {
		token := chain.NativeToken()
		if uri := token.Logo(); uri != "" && placeholders.Contains(uri) {
			token.SetLogoURI("")
			change.TokensCleared++
		}
	}

	return change
}

// Repair runs RepairRecord over every record of the store.
func Repair(store *registry.Store, opts RepairOptions) (*RepairResult, error) {
	logger := log.With().Str("component", "logos").Logger()
	placeholders := opts.Placeholders
	if placeholders == nil {
		placeholders = NewPlaceholderSet(nil)
	}

	folders, err := store.Folders()
	if err != nil {
		return nil, err
	}

	res := &RepairResult{Changes: []Change{}, Errors: []registry.RecordError{}}
	for _, folder := range folders {
		rec, err := store.Load(folder)
		if errors.Is(err, registry.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			logger.Error().Err(err).Msgf("Error processing %s", folder)
			res.Errors = append(res.Errors, registry.RecordError{Folder: folder, Error: err.Error()})
			continue
		}

		change := RepairRecord(rec, placeholders)
		if !change.Modified() {
			continue
		}
		change.Folder = folder

		switch {
		case change.LogoCopied:
			logger.Info().Msgf("%s: copied token logo to main logo", folder)
		case change.LogoReplaced:
			logger.Info().Msgf("%s: removed placeholder logo", folder)
		}
		if change.TokensCleared > 0 {
			logger.Info().Int("tokens", change.TokensCleared).Msgf("%s: cleared placeholder token logos", folder)
		}

		if !opts.DryRun {
			if err := store.Save(folder, rec); err != nil {
				logger.Error().Err(err).Msgf("Error processing %s", folder)
				res.Errors = append(res.Errors, registry.RecordError{Folder: folder, Error: err.Error()})
				continue
			}
		}

		res.Changes = append(res.Changes, change)
		res.Fixed++
		if change.LogoCopied {
			res.LogosCopied++
		}
	}
	return res, nil
}
