package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/solstrike/chipgate/internal/authority"
)

var (
	admin    = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	intruder = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func newTestRegistry() *Registry {
	return New(NewInMemStore(), authority.NewStaticKey(admin))
}

func TestInitializeOnce(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	cfg, err := r.Initialize(ctx, admin, 10_000_000)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if cfg.UnitPrice != 10_000_000 {
		t.Fatalf("unit price = %d", cfg.UnitPrice)
	}

	if _, err := r.Initialize(ctx, admin, 5); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}

	price, err := r.UnitPrice(ctx, "")
	if err != nil || price != 10_000_000 {
		t.Fatalf("failed re-init must not change price: %d %v", price, err)
	}
}

func TestSetUnitPriceRequiresAdmin(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	_, _ = r.Initialize(ctx, admin, 100)

	if err := r.SetUnitPrice(ctx, intruder, 1); !errors.Is(err, authority.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	price, _ := r.UnitPrice(ctx, "")
	if price != 100 {
		t.Fatalf("unauthorized call changed price to %d", price)
	}

	if err := r.SetUnitPrice(ctx, admin, 250); err != nil {
		t.Fatalf("set price failed: %v", err)
	}
	price, _ = r.UnitPrice(ctx, "")
	if price != 250 {
		t.Fatalf("price after update = %d", price)
	}
}

func TestSetUnitPriceAcceptsZero(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	_, _ = r.Initialize(ctx, admin, 100)

	if err := r.SetUnitPrice(ctx, admin, 0); err != nil {
		t.Fatalf("zero price rejected: %v", err)
	}
}

func TestRegisterAssetOnce(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	if _, err := r.RegisterAsset(ctx, admin, "usdq", 42); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := r.RegisterAsset(ctx, admin, "usdq", 43); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	price, err := r.UnitPrice(ctx, "usdq")
	if err != nil || price != 42 {
		t.Fatalf("asset price = %d, %v", price, err)
	}
}

func TestRepriceAsset(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	if err := r.RepriceAsset(ctx, admin, "ghost", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, _ = r.RegisterAsset(ctx, admin, "usdq", 42)
	if err := r.RepriceAsset(ctx, intruder, "usdq", 1); !errors.Is(err, authority.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := r.RepriceAsset(ctx, admin, "usdq", 55); err != nil {
		t.Fatalf("reprice failed: %v", err)
	}
	price, _ := r.UnitPrice(ctx, "usdq")
	if price != 55 {
		t.Fatalf("price after reprice = %d", price)
	}
}

func TestListIncludesNativeAndAssets(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	_, _ = r.Initialize(ctx, admin, 100)
	_, _ = r.RegisterAsset(ctx, admin, "usdq", 42)
	_, _ = r.RegisterAsset(ctx, admin, "eurq", 43)

	resp, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if resp.Native == nil || resp.Native.UnitPrice != 100 {
		t.Fatalf("native price missing: %+v", resp.Native)
	}
	if len(resp.Assets) != 2 || resp.Assets[0].AssetID != "eurq" {
		t.Fatalf("assets = %+v", resp.Assets)
	}
}
