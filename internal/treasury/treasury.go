// Package treasury models the custody identity of the exchange: the address
// that receives payments, holds reserved chips, and signs mint/burn calls.
// Its addresses are derived, never stored as secrets; only the bump byte is
// persisted alongside each record.
package treasury

import (
	"github.com/ethereum/go-ethereum/common"
)

// Capability proves authority over a derived custody address. It satisfies
// chipledger.Capability.
type Capability struct {
	addr common.Address
	bump byte
}

func (c Capability) Address() common.Address {
	return c.addr
}

func (c Capability) Bump() byte {
	return c.bump
}

// Treasury owns the custody address and the chip-mint authority. It is the
// only holder of these capabilities; callers receive them by value and the
// ledger checks them against its registered authority.
type Treasury struct {
	custody Capability
	mint    Capability
}

// New derives the treasury custody and chip-mint addresses from their fixed
// seed labels.
func New() *Treasury {
	custodyAddr, custodyBump := Derive(SeedTreasury)
	mintAddr, mintBump := Derive(SeedChipMint)
	return &Treasury{
		custody: Capability{addr: custodyAddr, bump: custodyBump},
		mint:    Capability{addr: mintAddr, bump: mintBump},
	}
}

// Address is the custody address: payment recipient and reserved-chip holder.
func (t *Treasury) Address() common.Address {
	return t.custody.addr
}

// Bump is the storage tag for the custody record.
func (t *Treasury) Bump() byte {
	return t.custody.bump
}

// Capability signs transfers out of the custody address.
func (t *Treasury) Capability() Capability {
	return t.custody
}

// MintAuthority signs chip mint and burn calls.
func (t *Treasury) MintAuthority() Capability {
	return t.mint
}

// AssetAccount derives the treasury's holding address for one payment asset.
func (t *Treasury) AssetAccount(assetID string) (common.Address, byte) {
	return Derive(SeedAssetPrice, assetID)
}
