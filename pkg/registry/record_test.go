package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `{
  "subnetId": "eYwmVU67LmSfZb1RwqCMhBYkFyG8ftxn6jAwqzFmxC9STBWLC",
  "network": "mainnet",
  "name": "Beam",
  "description": "Gaming <network> & more",
  "logo": "https://example.com/beam.png?size=64&format=png",
  "website": "https://onbeam.com",
  "categories": [
    "Gaming"
  ],
  "chains": [
    {
      "blockchainId": "2tmrrBo1Lgt1mzzvPSFt73kkQKFas5d1AP88tv9cicwoFp8BSn",
      "name": "Beam",
      "evmChainId": 4337,
      "rpcUrls": [
        "https://build.onbeam.com/rpc"
      ],
      "nativeToken": {
        "symbol": "BEAM",
        "decimals": 18
      }
    }
  ]
}
`

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord([]byte(sampleRecord))
	require.NoError(t, err)

	assert.Equal(t, "eYwmVU67LmSfZb1RwqCMhBYkFyG8ftxn6jAwqzFmxC9STBWLC", rec.SubnetID())
	assert.Equal(t, "https://example.com/beam.png?size=64&format=png", rec.Logo())

	_, ok := rec.IsL1()
	assert.False(t, ok)

	require.Len(t, rec.Chains(), 1)
	chain := rec.Chains()[0]
	assert.Equal(t, "2tmrrBo1Lgt1mzzvPSFt73kkQKFas5d1AP88tv9cicwoFp8BSn", chain.BlockchainID())
	assert.Empty(t, chain.SybilResistanceType())
	require.NotNil(t, chain.NativeToken())
	_, ok = chain.NativeToken().LogoURI()
	assert.False(t, ok, "logoUri was never set")

	meta := rec.Metadata()
	assert.Equal(t, "Beam", meta.Name)
	assert.Equal(t, "mainnet", meta.Network)
	assert.Equal(t, []string{"Gaming"}, meta.Categories)
}

func TestEncodeRecordRoundTripIsByteIdentical(t *testing.T) {
	rec, err := ParseRecord([]byte(sampleRecord))
	require.NoError(t, err)

	out, err := EncodeRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord, string(out))
}

func TestSettersAppendNewKeysInOrder(t *testing.T) {
	rec, err := ParseRecord([]byte(sampleRecord))
	require.NoError(t, err)

	rec.SetIsL1(true)
	chain := rec.Chains()[0]
	chain.NativeToken().SetLogoURI("https://example.com/token.png")
	chain.SetSybilResistanceType(ProofOfStake)

	out, err := EncodeRecord(rec)
	require.NoError(t, err)

	reparsed, err := ParseRecord(out)
	require.NoError(t, err)
	isL1, ok := reparsed.IsL1()
	assert.True(t, ok)
	assert.True(t, isL1)
	assert.Equal(t, "https://example.com/token.png", reparsed.Chains()[0].NativeToken().Logo())
	assert.Equal(t, ProofOfStake, reparsed.Chains()[0].SybilResistanceType())

	var top document
	require.NoError(t, json.Unmarshal(out, &top))
	assert.Equal(t, []string{"subnetId", "network", "name", "description", "logo", "website", "categories", "chains", "isL1"}, top.keys)

	var chains []document
	require.NoError(t, json.Unmarshal(top.values["chains"], &chains))
	require.Len(t, chains, 1)
	assert.Equal(t, []string{"blockchainId", "name", "evmChainId", "rpcUrls", "nativeToken", "sybilResistanceType"}, chains[0].keys)

	assert.Contains(t, string(out), `"https://example.com/beam.png?size=64&format=png"`, "URLs must not be HTML-escaped")
	assert.Contains(t, string(out), `"evmChainId": 4337`)
}

func TestEnsureNativeToken(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"subnetId":"x","chains":[{"blockchainId":"a"},{"blockchainId":"b","nativeToken":null}]}`))
	require.NoError(t, err)

	for _, chain := range rec.Chains() {
		assert.Nil(t, chain.NativeToken())
		token, created := chain.EnsureNativeToken()
		assert.True(t, created)
		token.SetLogoURI("")

		_, created = chain.EnsureNativeToken()
		assert.False(t, created)
	}

	out, err := EncodeRecord(rec)
	require.NoError(t, err)

	reparsed, err := ParseRecord(out)
	require.NoError(t, err)
	for _, chain := range reparsed.Chains() {
		uri, ok := chain.NativeToken().LogoURI()
		assert.True(t, ok, "empty logoUri must be written, not dropped")
		assert.Empty(t, uri)
	}
}

func TestParseRecordErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"truncated", `{"subnetId": "x"`},
		{"array", `[1, 2]`},
		{"null", `null`},
		{"wrong isL1 type", `{"isL1": "yes"}`},
		{"chains not an array", `{"chains": {}}`},
		{"null chain entry", `{"chains": [null]}`},
		{"native token not an object", `{"chains": [{"nativeToken": "BEAM"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestNullIsL1CountsAsUnset(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"subnetId":"x","isL1":null}`))
	require.NoError(t, err)
	_, ok := rec.IsL1()
	assert.False(t, ok)

	rec.SetIsL1(false)
	out, err := EncodeRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"subnetId\": \"x\",\n  \"isL1\": false\n}\n", string(out))
}
