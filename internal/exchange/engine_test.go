package exchange

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/solstrike/chipgate/internal/authority"
	"github.com/solstrike/chipgate/internal/chipledger"
	"github.com/solstrike/chipgate/internal/registry"
	"github.com/solstrike/chipgate/internal/treasury"
)

var (
	admin = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	buyer = common.HexToAddress("0x00000000000000000000000000000000000000b1")
)

type fixture struct {
	engine *Engine
	ledger *chipledger.InMemLedger
	vault  *treasury.Treasury
	prices *registry.Registry
}

func newFixture(t *testing.T, unitPrice uint64) *fixture {
	t.Helper()
	vault := treasury.New()
	ledger := chipledger.NewInMemLedger()
	ledger.SetMintAuthority(vault.MintAuthority().Address())

	prices := registry.New(registry.NewInMemStore(), authority.NewStaticKey(admin))
	if _, err := prices.Initialize(context.Background(), admin, unitPrice); err != nil {
		t.Fatalf("init prices: %v", err)
	}
	return &fixture{
		engine: NewEngine(prices, vault, ledger, nil),
		ledger: ledger,
		vault:  vault,
		prices: prices,
	}
}

func (f *fixture) balance(t *testing.T, holder common.Address, asset chipledger.AssetID) uint64 {
	t.Helper()
	bal, err := f.ledger.BalanceOf(context.Background(), holder, asset)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal
}

func TestBuyMintsAndPaysTreasury(t *testing.T) {
	// 0.01 of the base unit at 9 decimals.
	f := newFixture(t, 10_000_000)
	f.ledger.Fund(buyer, chipledger.Native, 1_000_000_000)

	receipt, err := f.engine.Buy(context.Background(), buyer, 5, "")
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if receipt.Total != 50_000_000 {
		t.Fatalf("total = %d", receipt.Total)
	}
	if got := f.balance(t, buyer, chipledger.Chip); got != 5 {
		t.Fatalf("buyer chips = %d", got)
	}
	if got := f.balance(t, f.vault.Address(), chipledger.Native); got != 50_000_000 {
		t.Fatalf("treasury payment balance = %d", got)
	}
	if got := f.balance(t, buyer, chipledger.Native); got != 950_000_000 {
		t.Fatalf("buyer payment balance = %d", got)
	}
}

func TestBuyWithRegisteredAsset(t *testing.T) {
	f := newFixture(t, 10_000_000)
	if _, err := f.prices.RegisterAsset(context.Background(), admin, "usdq", 2_000_000); err != nil {
		t.Fatalf("register asset: %v", err)
	}
	f.ledger.Fund(buyer, "usdq", 10_000_000)

	receipt, err := f.engine.Buy(context.Background(), buyer, 3, "usdq")
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if receipt.Total != 6_000_000 {
		t.Fatalf("total = %d", receipt.Total)
	}
	if got := f.balance(t, f.vault.Address(), "usdq"); got != 6_000_000 {
		t.Fatalf("treasury usdq balance = %d", got)
	}
}

func TestBuyUnregisteredAssetFails(t *testing.T) {
	f := newFixture(t, 10_000_000)
	f.ledger.Fund(buyer, "ghost", 100)

	if _, err := f.engine.Buy(context.Background(), buyer, 1, "ghost"); !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBuyOverflowLeavesBalancesUntouched(t *testing.T) {
	f := newFixture(t, math.MaxUint64)
	f.ledger.Fund(buyer, chipledger.Native, 100)

	if _, err := f.engine.Buy(context.Background(), buyer, 2, ""); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if got := f.balance(t, buyer, chipledger.Native); got != 100 {
		t.Fatalf("buyer balance changed on overflow: %d", got)
	}
	if got := f.balance(t, buyer, chipledger.Chip); got != 0 {
		t.Fatalf("chips minted on overflow: %d", got)
	}
}

func TestBuyInsufficientFundsHasNoEffect(t *testing.T) {
	f := newFixture(t, 10_000_000)
	f.ledger.Fund(buyer, chipledger.Native, 1)

	if _, err := f.engine.Buy(context.Background(), buyer, 5, ""); !errors.Is(err, chipledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := f.balance(t, buyer, chipledger.Native); got != 1 {
		t.Fatalf("balance changed on failed buy: %d", got)
	}
}

// failMintLedger makes the mint leg fail after the payment leg succeeded, to
// exercise the rollback path.
type failMintLedger struct {
	*chipledger.InMemLedger
}

var errMintDown = errors.New("mint unavailable")

func (f *failMintLedger) Mint(ctx context.Context, auth chipledger.Capability, target common.Address, amount uint64) error {
	return errMintDown
}

func TestBuyRollsBackPaymentWhenMintFails(t *testing.T) {
	f := newFixture(t, 10_000_000)
	f.ledger.Fund(buyer, chipledger.Native, 1_000_000_000)
	f.engine.tokens = &failMintLedger{InMemLedger: f.ledger}

	if _, err := f.engine.Buy(context.Background(), buyer, 5, ""); !errors.Is(err, errMintDown) {
		t.Fatalf("expected mint error, got %v", err)
	}
	if got := f.balance(t, buyer, chipledger.Native); got != 1_000_000_000 {
		t.Fatalf("payment not rolled back, buyer = %d", got)
	}
	if got := f.balance(t, f.vault.Address(), chipledger.Native); got != 0 {
		t.Fatalf("treasury kept payment after rollback: %d", got)
	}
}

func TestSellRoundTripRestoresBalance(t *testing.T) {
	f := newFixture(t, 10_000_000)
	f.ledger.Fund(buyer, chipledger.Native, 1_000_000_000)

	if _, err := f.engine.Buy(context.Background(), buyer, 7, ""); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if _, err := f.engine.Sell(context.Background(), buyer, 7); err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	if got := f.balance(t, buyer, chipledger.Native); got != 1_000_000_000 {
		t.Fatalf("round trip did not restore balance: %d", got)
	}
	if got := f.balance(t, buyer, chipledger.Chip); got != 0 {
		t.Fatalf("chips remain after round trip: %d", got)
	}
	if got := f.balance(t, f.vault.Address(), chipledger.Native); got != 0 {
		t.Fatalf("treasury retains custody after round trip: %d", got)
	}
}

func TestSellGuardsTreasurySolvency(t *testing.T) {
	f := newFixture(t, 10_000_000)
	// Chips exist without backing custody: mint directly, no deposit.
	mintAuth := f.vault.MintAuthority()
	if err := f.ledger.Mint(context.Background(), mintAuth, buyer, 5); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := f.engine.Sell(context.Background(), buyer, 5); !errors.Is(err, ErrInsufficientCustody) {
		t.Fatalf("expected ErrInsufficientCustody, got %v", err)
	}
	if got := f.balance(t, buyer, chipledger.Chip); got != 5 {
		t.Fatalf("chips burned despite guard: %d", got)
	}
}

func TestSellOverflowRejected(t *testing.T) {
	f := newFixture(t, math.MaxUint64)
	if _, err := f.engine.Sell(context.Background(), buyer, 2); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestReserveMovesChipsToTreasury(t *testing.T) {
	f := newFixture(t, 10_000_000)
	f.ledger.Fund(buyer, chipledger.Native, 1_000_000_000)
	if _, err := f.engine.Buy(context.Background(), buyer, 10, ""); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	receipt, err := f.engine.Reserve(context.Background(), buyer, 4)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if receipt.Side != "reserve" || receipt.Amount != 4 {
		t.Fatalf("receipt = %+v", receipt)
	}
	if got := f.balance(t, buyer, chipledger.Chip); got != 6 {
		t.Fatalf("buyer chips after reserve = %d", got)
	}
	if got := f.balance(t, f.vault.Address(), chipledger.Chip); got != 4 {
		t.Fatalf("treasury chips after reserve = %d", got)
	}
}

func TestZeroAmountRejected(t *testing.T) {
	f := newFixture(t, 10_000_000)
	if _, err := f.engine.Buy(context.Background(), buyer, 0, ""); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("buy: expected ErrZeroAmount, got %v", err)
	}
	if _, err := f.engine.Sell(context.Background(), buyer, 0); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("sell: expected ErrZeroAmount, got %v", err)
	}
	if _, err := f.engine.Reserve(context.Background(), buyer, 0); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("reserve: expected ErrZeroAmount, got %v", err)
	}
}
