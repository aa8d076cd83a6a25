package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Sybil resistance classifications.
const (
	ProofOfStake     = "Proof of Stake"
	ProofOfAuthority = "Proof of Authority"
)

// ChainRecord is one chain.json document. Fields the toolkit does not manage are kept as
// they were read, in their original order.
type ChainRecord struct {
	doc document

	subnetID string
	isL1     *bool
	logo     string
	chains   []*SubChain
}

// SubChain is one entry of a record's "chains" array.
type SubChain struct {
	doc document

	blockchainID        string
	nativeToken         *NativeToken
	sybilResistanceType string
}

// NativeToken is the token metadata of a sub-chain.
type NativeToken struct {
	doc document

	logoURI *string
}

// Metadata is a read-only view of the descriptive fields of a record.
type Metadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Website     string   `json:"website"`
	Network     string   `json:"network"`
	Categories  []string `json:"categories"`
}

// ParseRecord parses a chain.json document.
func ParseRecord(data []byte) (*ChainRecord, error) {
	var rec ChainRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// EncodeRecord renders rec the way records are stored on disk: two-space indentation and
// a trailing newline.
func EncodeRecord(rec *ChainRecord) ([]byte, error) {
	compact, err := marshalValue(rec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (r *ChainRecord) UnmarshalJSON(data []byte) error {
	if err := r.doc.UnmarshalJSON(data); err != nil {
		return err
	}

	*r = ChainRecord{doc: r.doc}
	if err := r.doc.decode("subnetId", &r.subnetID); err != nil {
		return err
	}
	if err := r.doc.decode("isL1", &r.isL1); err != nil {
		return err
	}
	if err := r.doc.decode("logo", &r.logo); err != nil {
		return err
	}
	if !r.doc.isNull("chains") {
		if err := r.doc.decode("chains", &r.chains); err != nil {
			return err
		}
		for i, c := range r.chains {
			if c == nil {
				return fmt.Errorf("invalid \"chains\": entry %d is null", i)
			}
		}
	}
	return nil
}

func (r *ChainRecord) MarshalJSON() ([]byte, error) {
	doc := r.doc.clone()
	if !r.doc.isNull("chains") {
		if err := doc.set("chains", r.chains); err != nil {
			return nil, err
		}
	}
	return doc.MarshalJSON()
}

func (r *ChainRecord) SubnetID() string { return r.subnetID }

// IsL1 returns the stored isL1 value and whether one is present. JSON null counts as absent.
func (r *ChainRecord) IsL1() (value bool, ok bool) {
	if r.isL1 == nil {
		return false, false
	}
	return *r.isL1, true
}

func (r *ChainRecord) SetIsL1(v bool) {
	r.isL1 = &v
	_ = r.doc.set("isL1", v)
}

func (r *ChainRecord) Logo() string { return r.logo }

func (r *ChainRecord) SetLogo(uri string) {
	r.logo = uri
	_ = r.doc.set("logo", uri)
}

func (r *ChainRecord) Chains() []*SubChain { return r.chains }

// Metadata decodes the descriptive fields. Fields of the wrong type are left empty.
func (r *ChainRecord) Metadata() Metadata {
	var m Metadata
	_ = r.doc.decode("name", &m.Name)
	_ = r.doc.decode("description", &m.Description)
	_ = r.doc.decode("website", &m.Website)
	_ = r.doc.decode("network", &m.Network)
	_ = r.doc.decode("categories", &m.Categories)
	return m
}

func (c *SubChain) UnmarshalJSON(data []byte) error {
	if err := c.doc.UnmarshalJSON(data); err != nil {
		return err
	}

	*c = SubChain{doc: c.doc}
	if err := c.doc.decode("blockchainId", &c.blockchainID); err != nil {
		return err
	}
	if !c.doc.isNull("nativeToken") {
		c.nativeToken = &NativeToken{}
		if err := c.doc.decode("nativeToken", c.nativeToken); err != nil {
			return err
		}
	}
	if err := c.doc.decode("sybilResistanceType", &c.sybilResistanceType); err != nil {
		return err
	}
	return nil
}

func (c *SubChain) MarshalJSON() ([]byte, error) {
	doc := c.doc.clone()
	if c.nativeToken != nil {
		if err := doc.set("nativeToken", c.nativeToken); err != nil {
			return nil, err
		}
	}
	return doc.MarshalJSON()
}

func (c *SubChain) BlockchainID() string { return c.blockchainID }

// NativeToken returns nil when the sub-chain has no token object.
func (c *SubChain) NativeToken() *NativeToken { return c.nativeToken }

// EnsureNativeToken returns the token object, creating an empty one if needed. created
// reports whether a new object was added.
func (c *SubChain) EnsureNativeToken() (token *NativeToken, created bool) {
	if c.nativeToken != nil {
		return c.nativeToken, false
	}
	c.nativeToken = &NativeToken{}
	return c.nativeToken, true
}

func (c *SubChain) SybilResistanceType() string { return c.sybilResistanceType }

func (c *SubChain) SetSybilResistanceType(t string) {
	c.sybilResistanceType = t
	_ = c.doc.set("sybilResistanceType", t)
}

func (t *NativeToken) UnmarshalJSON(data []byte) error {
	if err := t.doc.UnmarshalJSON(data); err != nil {
		return err
	}
	t.logoURI = nil
	return t.doc.decode("logoUri", &t.logoURI)
}

func (t *NativeToken) MarshalJSON() ([]byte, error) {
	return t.doc.MarshalJSON()
}

// LogoURI returns the token logo and whether the key is present. A present empty string
// means the logo was looked up and none was available.
func (t *NativeToken) LogoURI() (uri string, ok bool) {
	if t == nil || t.logoURI == nil {
		return "", false
	}
	return *t.logoURI, true
}

// Logo returns the token logo, or "" when absent.
func (t *NativeToken) Logo() string {
	uri, _ := t.LogoURI()
	return uri
}

func (t *NativeToken) SetLogoURI(uri string) {
	t.logoURI = &uri
	_ = t.doc.set("logoUri", uri)
}
