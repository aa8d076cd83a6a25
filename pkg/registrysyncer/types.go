package registrysyncer

import (
	"time"

	"l1registry/pkg/registry"
)

// Row is one l1_registry row.
type Row struct {
	SubnetID            string
	Name                string
	Description         string
	Logo                string
	Website             string
	IsL1                bool
	SybilResistanceType string
	LastUpdated         time.Time
}

// NewRow builds the row of rec. Records without a subnetId have no row.
func NewRow(rec *registry.ChainRecord, now time.Time) (Row, bool) {
	if rec.SubnetID() == "" {
		return Row{}, false
	}
	meta := rec.Metadata()
	row := Row{
		SubnetID:    rec.SubnetID(),
		Name:        meta.Name,
		Description: meta.Description,
		Logo:        rec.Logo(),
		Website:     meta.Website,
		LastUpdated: now,
	}
	row.IsL1, _ = rec.IsL1()
	if chains := rec.Chains(); len(chains) > 0 {
		row.SybilResistanceType = chains[0].SybilResistanceType()
	}
	return row, true
}
