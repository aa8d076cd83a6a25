package registry

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

// ValidateIDs checks that the subnet ID and every blockchain ID of rec are well-formed
// CB58 Avalanche IDs.
func ValidateIDs(rec *ChainRecord) []error {
	var errs []error

	if rec.SubnetID() == "" {
		errs = append(errs, errors.New("subnetId is missing"))
	} else if _, err := ids.FromString(rec.SubnetID()); err != nil {
		errs = append(errs, fmt.Errorf("subnetId %q: %w", rec.SubnetID(), err))
	}

	for i, c := range rec.Chains() {
		if c.BlockchainID() == "" {
			errs = append(errs, fmt.Errorf("chains[%d]: blockchainId is missing", i))
			continue
		}
		if _, err := ids.FromString(c.BlockchainID()); err != nil {
			errs = append(errs, fmt.Errorf("chains[%d]: blockchainId %q: %w", i, c.BlockchainID(), err))
		}
	}
	return errs
}
