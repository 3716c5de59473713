package chipledger

import (
	"context"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	alice     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob       = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	authority = common.HexToAddress("0x00000000000000000000000000000000000000ff")
)

func TestTransferMovesBalance(t *testing.T) {
	l := NewInMemLedger()
	l.Fund(alice, Native, 100)

	if err := l.Transfer(context.Background(), alice, bob, 40, Native, AccountCapability(alice)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	a, _ := l.BalanceOf(context.Background(), alice, Native)
	b, _ := l.BalanceOf(context.Background(), bob, Native)
	if a != 60 || b != 40 {
		t.Fatalf("balances after transfer: alice=%d bob=%d", a, b)
	}
}

func TestTransferRejectsWrongCapability(t *testing.T) {
	l := NewInMemLedger()
	l.Fund(alice, Native, 100)

	err := l.Transfer(context.Background(), alice, bob, 10, Native, AccountCapability(bob))
	if err != ErrBadCapability {
		t.Fatalf("expected ErrBadCapability, got %v", err)
	}
	a, _ := l.BalanceOf(context.Background(), alice, Native)
	if a != 100 {
		t.Fatalf("failed transfer must not move balance, alice=%d", a)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	l := NewInMemLedger()
	l.Fund(alice, Native, 5)

	err := l.Transfer(context.Background(), alice, bob, 10, Native, AccountCapability(alice))
	if err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestMintRequiresAuthority(t *testing.T) {
	l := NewInMemLedger()
	l.SetMintAuthority(authority)

	if err := l.Mint(context.Background(), AccountCapability(alice), alice, 10); err != ErrBadCapability {
		t.Fatalf("expected ErrBadCapability, got %v", err)
	}
	if err := l.Mint(context.Background(), AccountCapability(authority), alice, 10); err != nil {
		t.Fatalf("mint with authority failed: %v", err)
	}
	bal, _ := l.BalanceOf(context.Background(), alice, Chip)
	if bal != 10 {
		t.Fatalf("chip balance after mint: %d", bal)
	}
}

func TestBurnReducesSupply(t *testing.T) {
	l := NewInMemLedger()
	l.SetMintAuthority(authority)
	_ = l.Mint(context.Background(), AccountCapability(authority), alice, 10)

	if err := l.Burn(context.Background(), alice, 4, AccountCapability(authority)); err != nil {
		t.Fatalf("burn failed: %v", err)
	}
	bal, _ := l.BalanceOf(context.Background(), alice, Chip)
	if bal != 6 {
		t.Fatalf("chip balance after burn: %d", bal)
	}

	if err := l.Burn(context.Background(), alice, 100, AccountCapability(authority)); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestCreditOverflowRejected(t *testing.T) {
	l := NewInMemLedger()
	l.Fund(bob, Native, math.MaxUint64)
	l.Fund(alice, Native, 1)

	err := l.Transfer(context.Background(), alice, bob, 1, Native, AccountCapability(alice))
	if err != ErrBalanceOverflow {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	a, _ := l.BalanceOf(context.Background(), alice, Native)
	if a != 1 {
		t.Fatalf("failed transfer must not debit sender, alice=%d", a)
	}
}
