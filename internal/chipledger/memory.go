package chipledger

import (
	"context"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// InMemLedger is a process-local TokenLedger. Every call mutates balances
// under one lock, so each call is a single atomic hop as the interface
// requires.
type InMemLedger struct {
	mu            sync.Mutex
	balances      map[common.Address]map[AssetID]uint64
	mintAuthority common.Address
}

func NewInMemLedger() *InMemLedger {
	return &InMemLedger{
		balances: make(map[common.Address]map[AssetID]uint64),
	}
}

// SetMintAuthority registers the only identity allowed to mint and burn
// chips. Called once at startup with the treasury's derived authority.
func (l *InMemLedger) SetMintAuthority(addr common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mintAuthority = addr
}

// Fund credits a holder directly, bypassing capability checks. Test and
// bootstrap helper only.
func (l *InMemLedger) Fund(holder common.Address, asset AssetID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(holder, asset, amount)
}

func (l *InMemLedger) BalanceOf(_ context.Context, holder common.Address, asset AssetID) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[holder][asset], nil
}

func (l *InMemLedger) Transfer(_ context.Context, from, to common.Address, amount uint64, asset AssetID, cap Capability) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cap == nil || cap.Address() != from {
		return ErrBadCapability
	}
	if l.balances[from][asset] < amount {
		return ErrInsufficientBalance
	}
	if err := l.checkCredit(to, asset, amount); err != nil {
		return err
	}
	l.balances[from][asset] -= amount
	l.credit(to, asset, amount)
	return nil
}

func (l *InMemLedger) Mint(_ context.Context, authority Capability, target common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if authority == nil || authority.Address() != l.mintAuthority {
		return ErrBadCapability
	}
	if err := l.checkCredit(target, Chip, amount); err != nil {
		return err
	}
	l.credit(target, Chip, amount)
	return nil
}

func (l *InMemLedger) Burn(_ context.Context, holder common.Address, amount uint64, authority Capability) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if authority == nil || authority.Address() != l.mintAuthority {
		return ErrBadCapability
	}
	if l.balances[holder][Chip] < amount {
		return ErrInsufficientBalance
	}
	l.balances[holder][Chip] -= amount
	return nil
}

func (l *InMemLedger) checkCredit(holder common.Address, asset AssetID, amount uint64) error {
	if l.balances[holder][asset] > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	return nil
}

func (l *InMemLedger) credit(holder common.Address, asset AssetID, amount uint64) {
	if l.balances[holder] == nil {
		l.balances[holder] = make(map[AssetID]uint64)
	}
	l.balances[holder][asset] += amount
}
