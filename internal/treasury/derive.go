package treasury

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Seed labels for the custody keyspace. Per-asset records hang off
// SeedAssetPrice plus the asset id, so every record kind lives under one
// namespaced keyspace and cannot collide.
const (
	namespace       = "chipgate/v1"
	SeedTreasury    = "TREASURY"
	SeedChipMint    = "CHIP_MINT"
	SeedPriceConfig = "GLOBAL_CONFIG"
	SeedAssetPrice  = "CHIP_ASSET_PRICE"
)

// Derive yields the stable custody address for a seed label plus context
// keys, together with the bump byte that produced it. The bump is searched
// downward from 255; it is stored on the record so the address can be
// recomputed without another search.
func Derive(label string, context ...string) (common.Address, byte) {
	for bump := 255; bump >= 0; bump-- {
		addr := deriveAt(label, byte(bump), context...)
		if addr != (common.Address{}) {
			return addr, byte(bump)
		}
	}
	// Unreachable in practice: 256 keccak outputs with an all-zero tail
	// would be required.
	return common.Address{}, 0
}

// DeriveAt recomputes the address for a known bump.
func DeriveAt(label string, bump byte, context ...string) common.Address {
	return deriveAt(label, bump, context...)
}

func deriveAt(label string, bump byte, context ...string) common.Address {
	parts := [][]byte{[]byte(namespace), []byte(label)}
	for _, c := range context {
		parts = append(parts, []byte(c))
	}
	parts = append(parts, []byte{bump})
	h := crypto.Keccak256(parts...)
	return common.BytesToAddress(h[12:])
}
