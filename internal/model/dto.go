package model

// BuyRequest buys chips with the native currency, or with a registered
// payment asset when AssetID is set.
type BuyRequest struct {
	Amount  uint64 `json:"amount" binding:"required"`
	AssetID string `json:"asset_id,omitempty"`
}

type SellRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

type ReserveRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

// TradeReceipt reports the effect of one buy/sell/reserve hop.
type TradeReceipt struct {
	Side      string `json:"side"`
	Account   string `json:"account"`
	AssetID   string `json:"asset_id"`
	Amount    uint64 `json:"amount"` // chip units
	UnitPrice uint64 `json:"unit_price"`
	Total     uint64 `json:"total"` // payment-asset minor units
}

// InitPriceRequest creates the singleton price config. Either the minor-unit
// price or a decimal display price ("0.01") must be given.
type InitPriceRequest struct {
	UnitPrice        uint64 `json:"unit_price"`
	UnitPriceDecimal string `json:"unit_price_decimal,omitempty"`
}

type SetPriceRequest struct {
	UnitPrice        uint64 `json:"unit_price"`
	UnitPriceDecimal string `json:"unit_price_decimal,omitempty"`
}

type RegisterAssetRequest struct {
	AssetID          string `json:"asset_id" binding:"required"`
	UnitPrice        uint64 `json:"unit_price"`
	UnitPriceDecimal string `json:"unit_price_decimal,omitempty"`
}

// DistributeRequest credits the placement slots to the given recipients,
// first place first. Recipients beyond the configured slot count are rejected.
type DistributeRequest struct {
	Recipients []string `json:"recipients" binding:"required"`
}

type DistributeResponse struct {
	RoundID string            `json:"round_id"`
	Credits map[string]uint64 `json:"credits"` // recipient -> credited minor units
}

type ClaimResponse struct {
	Recipient string `json:"recipient"`
	Claimed   uint64 `json:"claimed"`
}

type PriceListResponse struct {
	Native *PriceConfig `json:"native,omitempty"`
	Assets []AssetPrice `json:"assets"`
}
