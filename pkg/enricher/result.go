package enricher

import (
	"l1registry/pkg/registry"
)

// Result collects the outcome of one enrichment run. It is serialized as the run report.
type Result struct {
	Success    []UpdatedRecord        `json:"success"`
	Errors     []registry.RecordError `json:"errors"`
	Skipped    []SkippedRecord        `json:"skipped"`
	Statistics Statistics             `json:"statistics"`
}

// UpdatedRecord describes a record that was rewritten, as seen through its first sub-chain.
type UpdatedRecord struct {
	Folder     string `json:"folder"`
	IsL1       bool   `json:"isL1"`
	SybilType  string `json:"sybilType,omitempty"`
	HasLogoURI bool   `json:"hasLogoUri"`
}

type SkippedRecord struct {
	Folder string `json:"folder"`
	Reason string `json:"reason"`
}

type Statistics struct {
	TotalChains           int       `json:"totalChains"`
	ChainsWithIsL1        int       `json:"chainsWithIsL1"`
	ChainsWithLogoURI     int       `json:"chainsWithLogoUri"`
	ChainsWithSybilType   int       `json:"chainsWithSybilType"`
	L1Count               int       `json:"l1Count"`
	SubnetCount           int       `json:"subnetCount"`
	ProofOfStakeCount     int       `json:"proofOfStakeCount"`
	ProofOfAuthorityCount int       `json:"proofOfAuthorityCount"`
	APIErrors             APIErrors `json:"apiErrors"`
}

type APIErrors struct {
	// Lookups that failed for any reason other than an unknown subnet.
	IsL1Failures int `json:"isL1Failures"`
	// Subnets the API does not know (testnet or private). Not an error, but worth a look.
	IsL1NotFound    int `json:"isL1NotFound"`
	LogoURIFailures int `json:"logoUriFailures"`
}

// Reasons recorded for skipped records.
const (
	ReasonNotFound        = "chain.json not found"
	ReasonAlreadyEnriched = "already enriched"
)

func NewResult() *Result {
	return &Result{
		Success: []UpdatedRecord{},
		Errors:  []registry.RecordError{},
		Skipped: []SkippedRecord{},
	}
}

// Merge adds other into r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Success = append(r.Success, other.Success...)
	r.Errors = append(r.Errors, other.Errors...)
	r.Skipped = append(r.Skipped, other.Skipped...)
	r.Statistics.add(other.Statistics)
}

func (s *Statistics) add(o Statistics) {
	s.TotalChains += o.TotalChains
	s.ChainsWithIsL1 += o.ChainsWithIsL1
	s.ChainsWithLogoURI += o.ChainsWithLogoURI
	s.ChainsWithSybilType += o.ChainsWithSybilType
	s.L1Count += o.L1Count
	s.SubnetCount += o.SubnetCount
	s.ProofOfStakeCount += o.ProofOfStakeCount
	s.ProofOfAuthorityCount += o.ProofOfAuthorityCount
	s.APIErrors.IsL1Failures += o.APIErrors.IsL1Failures
	s.APIErrors.IsL1NotFound += o.APIErrors.IsL1NotFound
	s.APIErrors.LogoURIFailures += o.APIErrors.LogoURIFailures
}

func (r *Result) fail(folder string, err error) {
	r.Errors = append(r.Errors, registry.RecordError{Folder: folder, Error: err.Error()})
}

func (r *Result) skip(folder, reason string) {
	r.Skipped = append(r.Skipped, SkippedRecord{Folder: folder, Reason: reason})
}

func updatedRecord(folder string, rec *registry.ChainRecord) UpdatedRecord {
	u := UpdatedRecord{Folder: folder}
	u.IsL1, _ = rec.IsL1()
	if chains := rec.Chains(); len(chains) > 0 {
		u.SybilType = chains[0].SybilResistanceType()
		u.HasLogoURI = chains[0].NativeToken().Logo() != ""
	}
	return u
}
