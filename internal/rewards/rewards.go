// Package rewards keeps the per-recipient claimable-balance ledger. Credits
// arrive in admin-gated distribution rounds; a claim transfers the pending
// chips out of treasury custody and zeroes the record in one atomic unit.
package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/solstrike/chipgate/internal/authority"
	"github.com/solstrike/chipgate/internal/chipledger"
	"github.com/solstrike/chipgate/internal/model"
	"github.com/solstrike/chipgate/internal/pkg/logger"
	"github.com/solstrike/chipgate/internal/pkg/metrics"
	"github.com/solstrike/chipgate/internal/treasury"
)

var (
	ErrOverflow            = errors.New("rewards: credited amount overflows")
	ErrInsufficientCustody = errors.New("rewards: treasury cannot cover claim")
	ErrTooManyRecipients   = errors.New("rewards: more recipients than placement slots")
	ErrInvalidBonus        = errors.New("rewards: bonus is not a whole number of minor units")
)

// Store persists claimable-reward records. Each call is atomic; Claim runs
// the transfer callback inside the same unit that zeroes the record, so a
// failed transfer leaves the balance claimable.
type Store interface {
	// Credit applies the whole batch or nothing, creating absent records.
	Credit(ctx context.Context, credits map[string]uint64) error
	// Pending returns 0 for an absent record; that is not an error.
	Pending(ctx context.Context, recipient string) (uint64, error)
	// Claim passes the pending amount to fn and zeroes the record only if
	// fn returns nil. It returns the amount handed to fn.
	Claim(ctx context.Context, recipient string, fn func(amount uint64) error) (uint64, error)
	List(ctx context.Context) ([]model.ClaimableReward, error)
}

// EventSink mirrors the exchange engine's feed hook.
type EventSink interface {
	Publish(event string, fields map[string]any)
}

type Ledger struct {
	auth   authority.Authorizer
	store  Store
	vault  *treasury.Treasury
	tokens chipledger.TokenLedger
	slots  []uint64 // bonus per placement, minor units, first place first
	events EventSink
}

func NewLedger(auth authority.Authorizer, store Store, vault *treasury.Treasury, tokens chipledger.TokenLedger, slots []uint64, events EventSink) *Ledger {
	return &Ledger{auth: auth, store: store, vault: vault, tokens: tokens, slots: slots, events: events}
}

// SlotsFromDecimals converts display bonuses ("2.5", "1", "0.3") to chip
// minor units exactly, with no floating-point intermediate.
func SlotsFromDecimals(bonuses []string) ([]uint64, error) {
	out := make([]uint64, 0, len(bonuses))
	for _, raw := range bonuses {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("rewards: bad bonus %q: %w", raw, err)
		}
		minor := d.Shift(model.ChipDecimals)
		if !minor.IsInteger() || minor.IsNegative() {
			return nil, ErrInvalidBonus
		}
		bi := minor.BigInt()
		if !bi.IsUint64() {
			return nil, ErrOverflow
		}
		out = append(out, bi.Uint64())
	}
	return out, nil
}

// Distribute credits the placement slots to recipients in order. Creation is
// idempotent; the credit itself is not — at-most-once per round is the
// caller's responsibility.
func (l *Ledger) Distribute(ctx context.Context, caller common.Address, recipients []common.Address) (*model.DistributeResponse, error) {
	if err := authority.Check(l.auth, caller); err != nil {
		return nil, err
	}
	if len(recipients) > len(l.slots) {
		return nil, ErrTooManyRecipients
	}

	credits := make(map[string]uint64, len(recipients))
	for i, recipient := range recipients {
		credits[recipient.Hex()] += l.slots[i]
	}
	if err := l.store.Credit(ctx, credits); err != nil {
		return nil, err
	}

	round := uuid.New().String()
	metrics.DistributionsTotal.Inc()
	logger.Info("rewards distributed", "round_id", round, "recipients", len(recipients))
	return &model.DistributeResponse{RoundID: round, Credits: credits}, nil
}

// Claim transfers the caller's pending balance out of treasury custody and
// zeroes the record. An absent record has balance zero: claiming it is a
// no-op, not an error.
func (l *Ledger) Claim(ctx context.Context, recipient common.Address) (uint64, error) {
	claimed, err := l.store.Claim(ctx, recipient.Hex(), func(amount uint64) error {
		if amount == 0 {
			return nil
		}
		custody, err := l.tokens.BalanceOf(ctx, l.vault.Address(), chipledger.Chip)
		if err != nil {
			return err
		}
		if custody < amount {
			return ErrInsufficientCustody
		}
		return l.tokens.Transfer(ctx, l.vault.Address(), recipient, amount, chipledger.Chip, l.vault.Capability())
	})
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues("failed").Inc()
		return 0, err
	}

	metrics.ClaimsTotal.WithLabelValues("ok").Inc()
	if l.events != nil && claimed > 0 {
		l.events.Publish("claim", map[string]any{
			"recipient": recipient.Hex(),
			"amount":    claimed,
		})
	}
	return claimed, nil
}

// Pending reports the caller's claimable balance.
func (l *Ledger) Pending(ctx context.Context, recipient common.Address) (uint64, error) {
	return l.store.Pending(ctx, recipient.Hex())
}

// List returns every pending record, for the inspector.
func (l *Ledger) List(ctx context.Context) ([]model.ClaimableReward, error) {
	return l.store.List(ctx)
}
