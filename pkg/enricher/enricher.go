// Package enricher fills the fields of registry records that can be derived from the
// Glacier API: isL1, native token logos and the sybil resistance type. Every fill is
// "set if empty", so a run can be repeated or resumed at any point.
package enricher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"l1registry/pkg/glacier"
	"l1registry/pkg/registry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Source is the remote data the enricher needs. FetchIsL1 returns glacier.ErrNotFound for
// subnets the API does not know.
type Source interface {
	FetchSnapshot(ctx context.Context) (*glacier.Snapshot, error)
	FetchIsL1(ctx context.Context, subnetID string) (bool, error)
}

type Options struct {
	// Minimum spacing between per-record remote calls in batch mode.
	RequestDelay time.Duration
	// Nil means DefaultSybilTable.
	SybilTable SybilTable
}

type Enricher struct {
	store   *registry.Store
	source  Source
	sybil   SybilTable
	limiter *rate.Limiter
	logger  zerolog.Logger

	snapshot       *glacier.Snapshot
	snapshotLoaded bool
}

func New(store *registry.Store, source Source, opts Options) *Enricher {
	sybil := opts.SybilTable
	if sybil == nil {
		sybil = DefaultSybilTable()
	}

	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}

	return &Enricher{
		store:   store,
		source:  source,
		sybil:   sybil,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log.With().Str("component", "enricher").Logger(),
	}
}

// LoadSnapshot fetches the bulk chain listing once. A failed fetch is logged and leaves
// the enricher without a snapshot: every logo lookup then falls through to "not found".
func (e *Enricher) LoadSnapshot(ctx context.Context) {
	if e.snapshotLoaded {
		return
	}
	e.snapshotLoaded = true

	e.logger.Info().Msg("Fetching all chain data from Glacier API...")
	snap, err := e.source.FetchSnapshot(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to fetch Glacier chain data, logos will not be enriched")
		return
	}
	e.snapshot = snap
	e.logger.Info().Int("chains", snap.Len()).Msg("Fetched chains from Glacier API")
}

// RunBatch enriches every chain in the registry. Only a failure to list the registry is
// returned as an error; per-record failures end up in the result.
func (e *Enricher) RunBatch(ctx context.Context) (*Result, error) {
	e.LoadSnapshot(ctx)

	folders, err := e.store.Folders()
	if err != nil {
		return nil, err
	}
	e.logger.Info().Msgf("Processing %d chain(s)...", len(folders))

	res := NewResult()
	for i, folder := range folders {
		if ctx.Err() != nil {
			e.logger.Warn().Int("remaining", len(folders)-i).Msg("Interrupted, remaining chains left untouched")
			break
		}
		e.logger.Info().Msgf("[%d/%d] Processing: %s", i+1, len(folders), folder)
		e.processFolder(ctx, folder, true, res)
	}
	return res, nil
}

// RunSingle enriches one chain without any request spacing.
func (e *Enricher) RunSingle(ctx context.Context, folder string) *Result {
	e.LoadSnapshot(ctx)

	res := NewResult()
	e.logger.Info().Msgf("[1/1] Processing: %s", folder)
	e.processFolder(ctx, folder, false, res)
	return res
}

func (e *Enricher) processFolder(ctx context.Context, folder string, batch bool, res *Result) {
	rec, err := e.store.Load(folder)
	if errors.Is(err, registry.ErrRecordNotFound) {
		e.logger.Info().Msgf("  Skipping %s: %s", folder, ReasonNotFound)
		res.skip(folder, ReasonNotFound)
		return
	}
	if err != nil {
		e.logger.Error().Err(err).Msgf("  Error processing %s", folder)
		res.fail(folder, err)
		return
	}

	modified, err := e.EnrichRecord(ctx, rec, batch, &res.Statistics)
	if err != nil {
		e.logger.Error().Err(err).Msgf("  Error processing %s", folder)
		res.fail(folder, err)
		return
	}

	if modified {
		if err := e.store.Save(folder, rec); err != nil {
			e.logger.Error().Err(err).Msgf("  Error processing %s", folder)
			res.fail(folder, err)
			return
		}
		e.logger.Info().Msgf("  Updated %s", folder)
		res.Success = append(res.Success, updatedRecord(folder, rec))
	} else {
		e.logger.Debug().Msgf("  %s (no changes needed)", folder)
		res.skip(folder, ReasonAlreadyEnriched)
	}
	res.Statistics.TotalChains++
}

// EnrichRecord fills the missing fields of rec in place and reports whether anything
// changed. Remote failures degrade to defaults; the only error returned is a cancelled
// context, in which case rec must not be written.
func (e *Enricher) EnrichRecord(ctx context.Context, rec *registry.ChainRecord, batch bool, stats *Statistics) (bool, error) {
	modified := false

	if _, ok := rec.IsL1(); !ok {
		isL1, err := e.lookupIsL1(ctx, rec.SubnetID(), batch, stats)
		if err != nil {
			return false, err
		}
		rec.SetIsL1(isL1)
		modified = true

		stats.ChainsWithIsL1++
		if isL1 {
			stats.L1Count++
		} else {
			stats.SubnetCount++
		}
	}

	for _, chain := range rec.Chains() {
		token, created := chain.EnsureNativeToken()
		if created {
			modified = true
		}

		if token.Logo() == "" {
			if logo, ok := e.snapshot.LogoURI(chain.BlockchainID()); ok {
				token.SetLogoURI(logo)
				modified = true
				stats.ChainsWithLogoURI++
			} else {
				// An explicit "" marks the logo as checked.
				if _, present := token.LogoURI(); !present {
					token.SetLogoURI("")
					modified = true
				}
				stats.APIErrors.LogoURIFailures++
			}
		}

		if chain.SybilResistanceType() == "" {
			kind := e.sybil.Resolve(rec.SubnetID())
			chain.SetSybilResistanceType(kind)
			modified = true

			stats.ChainsWithSybilType++
			switch kind {
			case registry.ProofOfStake:
				stats.ProofOfStakeCount++
			case registry.ProofOfAuthority:
				stats.ProofOfAuthorityCount++
			}
		}
	}

	return modified, nil
}

func (e *Enricher) lookupIsL1(ctx context.Context, subnetID string, batch bool, stats *Statistics) (bool, error) {
	if subnetID == "" {
		e.logger.Warn().Msg("  Record has no subnetId, defaulting isL1 to false")
		stats.APIErrors.IsL1NotFound++
		return false, nil
	}

	if batch {
		if err := e.limiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("rate limiter: %w", err)
		}
	}

	isL1, err := e.source.FetchIsL1(ctx, subnetID)
	switch {
	case err == nil:
		return isL1, nil
	case errors.Is(err, glacier.ErrNotFound):
		e.logger.Warn().Msgf("  Subnet %s not found in API (might be testnet or private)", subnetID)
		stats.APIErrors.IsL1NotFound++
		return false, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	default:
		e.logger.Warn().Err(err).Msgf("  Failed to fetch isL1 for %s", subnetID)
		stats.APIErrors.IsL1Failures++
		return false, nil
	}
}
