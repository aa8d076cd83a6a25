package glacier

// ChainSummary is one entry of the bulk chain listing.
type ChainSummary struct {
	PlatformChainID string       `json:"platformChainId"`
	ChainName       string       `json:"chainName,omitempty"`
	NetworkToken    NetworkToken `json:"networkToken"`
}

type NetworkToken struct {
	Symbol  string `json:"symbol,omitempty"`
	LogoURI string `json:"logoUri"`
}

type chainsResponse struct {
	Chains *[]ChainSummary `json:"chains"`
}

type subnetResponse struct {
	SubnetID string `json:"subnetId"`
	IsL1     *bool  `json:"isL1"`
}

// Snapshot is the bulk chain listing fetched once per run, indexed by platform chain ID.
// A nil *Snapshot is valid and finds nothing.
type Snapshot struct {
	logos  map[string]string
	chains int
}

// NewSnapshot indexes chains. When a platform chain ID appears more than once the first
// entry wins.
func NewSnapshot(chains []ChainSummary) *Snapshot {
	s := &Snapshot{
		logos:  make(map[string]string, len(chains)),
		chains: len(chains),
	}
	for _, c := range chains {
		if _, seen := s.logos[c.PlatformChainID]; seen {
			continue
		}
		s.logos[c.PlatformChainID] = c.NetworkToken.LogoURI
	}
	return s
}

// LogoURI returns the network token logo of the chain with the given platform chain ID.
// Chains without a logo are reported as not found.
func (s *Snapshot) LogoURI(blockchainID string) (string, bool) {
	if s == nil {
		return "", false
	}
	logo := s.logos[blockchainID]
	return logo, logo != ""
}

// Len returns the number of chains in the listing.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return s.chains
}
