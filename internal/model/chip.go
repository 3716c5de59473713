package model

import "time"

// ChipDecimals is the minor-unit scale of the chip token and of every
// payment asset the exchange accepts.
const ChipDecimals = 9

// PriceConfig is the singleton record holding the native-currency chip price.
type PriceConfig struct {
	UnitPrice uint64 `json:"unit_price"` // minor units per chip
	Bump      byte   `json:"bump"`       // storage-layout tag from address derivation
}

// AssetPrice holds the chip price for one registered payment asset.
// AssetID is immutable after registration.
type AssetPrice struct {
	AssetID   string `json:"asset_id"`
	UnitPrice uint64 `json:"unit_price"`
	Bump      byte   `json:"bump"`
}

// ClaimableReward is the pending credit of one reward recipient. The amount
// accumulates across distribution rounds and is zeroed atomically on claim.
type ClaimableReward struct {
	Recipient string    `json:"recipient"`
	Amount    uint64    `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}
