package enricher

import (
	"l1registry/pkg/registry"

	"github.com/ava-labs/avalanchego/utils/constants"
)

// SybilTable maps subnet IDs to their sybil resistance type. Subnets that are not listed
// are Proof of Authority.
type SybilTable map[string]string

// DefaultSybilTable lists the subnets known to be secured by Proof of Stake.
func DefaultSybilTable() SybilTable {
	return SybilTable{
		constants.PrimaryNetworkID.String():                 registry.ProofOfStake,
		"eYwmVU67LmSfZb1RwqCMhBYkFyG8ftxn6jAwqzFmxC9STBWLC": registry.ProofOfStake,
		"5moznRzaAEhzWkNTQVdT1U4Kb9EU7dbsKZQNmHwtN5MGVQRyT": registry.ProofOfStake,
	}
}

// With returns a copy of t extended with extra. Entries in extra win.
func (t SybilTable) With(extra map[string]string) SybilTable {
	merged := make(SybilTable, len(t)+len(extra))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (t SybilTable) Resolve(subnetID string) string {
	if kind, ok := t[subnetID]; ok {
		return kind
	}
	return registry.ProofOfAuthority
}
