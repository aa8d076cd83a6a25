package registrysyncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"l1registry/pkg/chwrapper"
	"l1registry/pkg/registry"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	RegistryRepoURL = "https://github.com/L1Beat/l1-registry.git"
	TempDirPrefix   = "l1-registry-sync"

	loadConcurrency = 8
)

// LoadRows reads every record of the store in parallel and returns the rows ordered by
// folder. Unreadable records are logged and skipped.
func LoadRows(ctx context.Context, store *registry.Store, now time.Time) ([]Row, error) {
	logger := log.With().Str("component", "registry-sync").Logger()

	folders, err := store.Folders()
	if err != nil {
		return nil, err
	}

	type loaded struct {
		folder string
		row    Row
	}
	var (
		mu   sync.Mutex
		rows []loaded
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, folder := range folders {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := store.Load(folder)
			if errors.Is(err, registry.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				logger.Warn().Err(err).Msgf("Skipping %s", folder)
				return nil
			}
			row, ok := NewRow(rec, now)
			if !ok {
				logger.Debug().Msgf("Skipping %s: no subnetId", folder)
				return nil
			}
			mu.Lock()
			rows = append(rows, loaded{folder: folder, row: row})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].folder < rows[j].folder })
	out := make([]Row, len(rows))
	for i, l := range rows {
		out[i] = l.row
	}
	return out, nil
}

// SyncRegistry exports the records of store into the l1_registry table.
func SyncRegistry(ctx context.Context, conn driver.Conn, store *registry.Store) (int, error) {
	logger := log.With().Str("component", "registry-sync").Logger()
	logger.Info().Str("root", store.Root()).Msg("Starting L1 registry sync...")

	if err := chwrapper.CreateRegistryTable(ctx, conn); err != nil {
		return 0, err
	}

	rows, err := LoadRows(ctx, store, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	logger.Info().Msgf("Found %d chains metadata", len(rows))

	if len(rows) > 0 {
		if err := insertRows(ctx, conn, rows); err != nil {
			return 0, fmt.Errorf("failed to insert registry data: %w", err)
		}
	}

	logger.Info().Msg("Sync completed successfully")
	return len(rows), nil
}

func insertRows(ctx context.Context, conn driver.Conn, rows []Row) error {
	batch, err := conn.PrepareBatch(ctx, `INSERT INTO l1_registry (
		subnet_id, name, description, logo_url, website_url, is_l1, sybil_resistance_type, last_updated
	)`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, row := range rows {
		err = batch.Append(
			row.SubnetID,
			row.Name,
			row.Description,
			row.Logo,
			row.Website,
			row.IsL1,
			row.SybilResistanceType,
			row.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("failed to append chain %s: %w", row.SubnetID, err)
		}
	}

	return batch.Send()
}

// CloneRegistry shallow-clones repoURL into a temp dir and returns the path of its data
// directory. The caller removes dir when done.
func CloneRegistry(ctx context.Context, repoURL string) (dir, dataDir string, err error) {
	logger := log.With().Str("component", "registry-sync").Logger()

	dir, err = os.MkdirTemp("", TempDirPrefix)
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	logger.Info().Msgf("Cloning %s to %s", repoURL, dir)
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth=1", repoURL, dir)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		return "", "", fmt.Errorf("git clone failed: %s: %w", string(output), err)
	}
	return dir, filepath.Join(dir, "data"), nil
}

// WipeRegistry empties the l1_registry table.
func WipeRegistry(ctx context.Context, conn driver.Conn) error {
	log.Info().Str("component", "registry-sync").Msg("Truncating l1_registry...")
	if err := conn.Exec(ctx, "TRUNCATE TABLE IF EXISTS l1_registry"); err != nil {
		return fmt.Errorf("failed to truncate l1_registry: %w", err)
	}
	return nil
}
