package assets

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cosmos/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	// PolicyIDHexLen is the hex length of a minting policy hash (28 bytes).
	PolicyIDHexLen = 56

	fingerprintHRP  = "asset"
	fingerprintSize = 20
	idSeparator     = "."
)

// SplitAssetID separates a policy id from the hex asset name. A literal "."
// wins; otherwise the first 56 hex characters are taken as the policy id.
func SplitAssetID(id string) (policyHex, nameHex string) {
	if policy, name, ok := strings.Cut(id, idSeparator); ok {
		return policy, name
	}
	if len(id) < PolicyIDHexLen {
		return id, ""
	}
	return id[:PolicyIDHexLen], id[PolicyIDHexLen:]
}

// Fingerprint derives the CIP-14 fingerprint of an asset id:
// bech32("asset", blake2b-160(policy || name)).
func Fingerprint(id string) (string, error) {
	policyHex, nameHex := SplitAssetID(id)
	if len(policyHex) != PolicyIDHexLen {
		return "", fmt.Errorf("policy id must be %d hex chars, got %d", PolicyIDHexLen, len(policyHex))
	}

	policy, err := hex.DecodeString(policyHex)
	if err != nil {
		return "", fmt.Errorf("decode policy id: %w", err)
	}
	name, err := hex.DecodeString(nameHex)
	if err != nil {
		return "", fmt.Errorf("decode asset name: %w", err)
	}

	h, err := blake2b.New(fingerprintSize, nil)
	if err != nil {
		return "", err
	}
	h.Write(policy)
	h.Write(name)

	words, err := bech32.ConvertBits(h.Sum(nil), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert fingerprint bits: %w", err)
	}
	return bech32.Encode(fingerprintHRP, words)
}

// DisplayName decodes the hex asset-name segment into text. Names that are not
// valid hex are returned unchanged.
func DisplayName(id string) string {
	segment := id
	if _, name, ok := strings.Cut(id, idSeparator); ok {
		segment = name
	} else if len(id) > PolicyIDHexLen {
		segment = id[PolicyIDHexLen:]
	}
	decoded, err := hex.DecodeString(segment)
	if err != nil {
		return segment
	}
	return string(decoded)
}
