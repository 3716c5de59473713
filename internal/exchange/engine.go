// Package exchange implements the buy/sell/reserve state transitions between
// payment assets and the chip unit. Each call is a single atomic hop: the
// engine validates everything up front, serializes the effect under one lock,
// and compensates the first ledger leg if the second fails.
package exchange

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/solstrike/chipgate/internal/chipledger"
	"github.com/solstrike/chipgate/internal/model"
	"github.com/solstrike/chipgate/internal/pkg/logger"
	"github.com/solstrike/chipgate/internal/pkg/metrics"
	"github.com/solstrike/chipgate/internal/registry"
	"github.com/solstrike/chipgate/internal/treasury"
)

var (
	ErrOverflow            = errors.New("exchange: price * amount overflows")
	ErrInsufficientCustody = errors.New("exchange: treasury cannot cover redemption")
	ErrZeroAmount          = errors.New("exchange: amount must be positive")
)

// EventSink receives trade events; the websocket feed implements it. The
// off-platform session ledger watches reserve events to decrement session
// balances.
type EventSink interface {
	Publish(event string, fields map[string]any)
}

type Engine struct {
	mu     sync.Mutex
	prices *registry.Registry
	vault  *treasury.Treasury
	tokens chipledger.TokenLedger
	events EventSink
}

func NewEngine(prices *registry.Registry, vault *treasury.Treasury, tokens chipledger.TokenLedger, events EventSink) *Engine {
	return &Engine{prices: prices, vault: vault, tokens: tokens, events: events}
}

// Buy converts a payment into freshly minted chips. assetID selects a
// registered payment asset; empty means the native currency.
func (e *Engine) Buy(ctx context.Context, buyer common.Address, amount uint64, assetID string) (*model.TradeReceipt, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	unitPrice, err := e.prices.UnitPrice(ctx, assetID)
	if err != nil {
		return nil, err
	}
	total, err := checkedMul(unitPrice, amount)
	if err != nil {
		return nil, err
	}
	payAsset := paymentAsset(assetID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.tokens.Transfer(ctx, buyer, e.vault.Address(), total, payAsset, chipledger.AccountCapability(buyer)); err != nil {
		metrics.TradesTotal.WithLabelValues("buy", "rejected").Inc()
		return nil, err
	}
	if err := e.tokens.Mint(ctx, e.vault.MintAuthority(), buyer, amount); err != nil {
		// Roll back the payment leg so the failed buy has zero effect.
		if rbErr := e.tokens.Transfer(ctx, e.vault.Address(), buyer, total, payAsset, e.vault.Capability()); rbErr != nil {
			logger.Error("buy rollback failed", "buyer", buyer.Hex(), "total", total, "error", rbErr)
		}
		metrics.TradesTotal.WithLabelValues("buy", "failed").Inc()
		return nil, err
	}

	metrics.TradesTotal.WithLabelValues("buy", "ok").Inc()
	receipt := &model.TradeReceipt{
		Side: "buy", Account: buyer.Hex(), AssetID: assetID,
		Amount: amount, UnitPrice: unitPrice, Total: total,
	}
	e.publish("trade", receipt)
	return receipt, nil
}

// Sell redeems chips for the native currency at the current price. The
// solvency guard runs before any debit: a sell can never drive treasury
// custody negative.
func (e *Engine) Sell(ctx context.Context, seller common.Address, amount uint64) (*model.TradeReceipt, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	unitPrice, err := e.prices.UnitPrice(ctx, "")
	if err != nil {
		return nil, err
	}
	total, err := checkedMul(unitPrice, amount)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	custody, err := e.tokens.BalanceOf(ctx, e.vault.Address(), chipledger.Native)
	if err != nil {
		return nil, err
	}
	if custody < total {
		metrics.TradesTotal.WithLabelValues("sell", "insolvent").Inc()
		return nil, ErrInsufficientCustody
	}

	if err := e.tokens.Burn(ctx, seller, amount, e.vault.MintAuthority()); err != nil {
		metrics.TradesTotal.WithLabelValues("sell", "rejected").Inc()
		return nil, err
	}
	if err := e.tokens.Transfer(ctx, e.vault.Address(), seller, total, chipledger.Native, e.vault.Capability()); err != nil {
		// Re-mint the burned chips so the failed sell has zero effect.
		if rbErr := e.tokens.Mint(ctx, e.vault.MintAuthority(), seller, amount); rbErr != nil {
			logger.Error("sell rollback failed", "seller", seller.Hex(), "amount", amount, "error", rbErr)
		}
		metrics.TradesTotal.WithLabelValues("sell", "failed").Inc()
		return nil, err
	}

	metrics.TradesTotal.WithLabelValues("sell", "ok").Inc()
	receipt := &model.TradeReceipt{
		Side: "sell", Account: seller.Hex(),
		Amount: amount, UnitPrice: unitPrice, Total: total,
	}
	e.publish("trade", receipt)
	return receipt, nil
}

// Reserve moves chips from the caller into treasury custody. The core keeps
// no record of why; the session ledger observes the emitted event.
func (e *Engine) Reserve(ctx context.Context, caller common.Address, amount uint64) (*model.TradeReceipt, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.tokens.Transfer(ctx, caller, e.vault.Address(), amount, chipledger.Chip, chipledger.AccountCapability(caller)); err != nil {
		metrics.TradesTotal.WithLabelValues("reserve", "rejected").Inc()
		return nil, err
	}

	metrics.TradesTotal.WithLabelValues("reserve", "ok").Inc()
	receipt := &model.TradeReceipt{Side: "reserve", Account: caller.Hex(), Amount: amount}
	e.publish("reserve", receipt)
	return receipt, nil
}

func (e *Engine) publish(event string, r *model.TradeReceipt) {
	if e.events == nil {
		return
	}
	e.events.Publish(event, map[string]any{
		"side":       r.Side,
		"account":    r.Account,
		"asset_id":   r.AssetID,
		"amount":     r.Amount,
		"unit_price": r.UnitPrice,
		"total":      r.Total,
	})
}

func paymentAsset(assetID string) chipledger.AssetID {
	if assetID == "" {
		return chipledger.Native
	}
	return chipledger.AssetID(assetID)
}

// checkedMul rejects rather than wraps: uint64 overflow aborts the trade.
func checkedMul(unitPrice, amount uint64) (uint64, error) {
	if unitPrice != 0 && amount > math.MaxUint64/unitPrice {
		return 0, ErrOverflow
	}
	return unitPrice * amount, nil
}
