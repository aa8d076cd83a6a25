package logos

import (
	"errors"
	"strings"

	"l1registry/pkg/registry"

	"github.com/rs/zerolog/log"
)

// Finding is a record with an empty primary logo and a usable token logo.
type Finding struct {
	Folder string `json:"folder"`
	Logo   string `json:"logo"`
}

type AuditResult struct {
	Findings []Finding              `json:"findings"`
	Fixed    int                    `json:"fixed"`
	Errors   []registry.RecordError `json:"errors"`
}

// AuditRecord returns the first usable token logo of rec when its primary logo is blank.
// A token logo is usable when it is not blank and does not mention avacloud.
func AuditRecord(rec *registry.ChainRecord) (string, bool) {
	if strings.TrimSpace(rec.Logo()) != "" {
		return "", false
	}
	for _, chain := range rec.Chains() {
		uri := chain.NativeToken().Logo()
		if strings.TrimSpace(uri) == "" {
			continue
		}
		if strings.Contains(strings.ToLower(uri), "avacloud") {
			continue
		}
		return uri, true
	}
	return "", false
}

// Audit scans the store for records missing a primary logo. With fix set, the token logo
// found for each record is copied into its primary logo.
func Audit(store *registry.Store, fix bool) (*AuditResult, error) {
	logger := log.With().Str("component", "logos").Logger()

	folders, err := store.Folders()
	if err != nil {
		return nil, err
	}

	res := &AuditResult{Findings: []Finding{}, Errors: []registry.RecordError{}}
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

		logo, ok := AuditRecord(rec)
		if !ok {
			continue
		}
		res.Findings = append(res.Findings, Finding{Folder: folder, Logo: logo})

		if !fix {
			continue
		}
		rec.SetLogo(logo)
		if err := store.Save(folder, rec); err != nil {
			logger.Error().Err(err).Msgf("Error processing %s", folder)
			res.Errors = append(res.Errors, registry.RecordError{Folder: folder, Error: err.Error()})
			continue
		}
		logger.Info().Msgf("Fixed %s", folder)
		res.Fixed++
	}
	return res, nil
}
