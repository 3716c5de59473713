package treasury

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestDeriveIsDeterministic(t *testing.T) {
	a1, b1 := Derive(SeedTreasury)
	a2, b2 := Derive(SeedTreasury)
	if a1 != a2 || b1 != b2 {
		t.Fatalf("derivation not stable: %s/%d vs %s/%d", a1, b1, a2, b2)
	}
	if a1 == (common.Address{}) {
		t.Fatal("derived zero address")
	}
}

func TestDeriveAtRecomputesWithoutSearch(t *testing.T) {
	addr, bump := Derive(SeedAssetPrice, "usdq")
	if got := DeriveAt(SeedAssetPrice, bump, "usdq"); got != addr {
		t.Fatalf("DeriveAt mismatch: %s vs %s", got, addr)
	}
}

func TestSeedsPartitionKeyspace(t *testing.T) {
	treasuryAddr, _ := Derive(SeedTreasury)
	mintAddr, _ := Derive(SeedChipMint)
	assetAddr, _ := Derive(SeedAssetPrice, "usdq")
	otherAsset, _ := Derive(SeedAssetPrice, "eurq")

	addrs := map[common.Address]bool{
		treasuryAddr: true, mintAddr: true, assetAddr: true, otherAsset: true,
	}
	if len(addrs) != 4 {
		t.Fatalf("expected 4 distinct addresses, got %d", len(addrs))
	}
}

func TestTreasuryOwnsItsCapabilities(t *testing.T) {
	tr := New()
	if tr.Capability().Address() != tr.Address() {
		t.Fatal("custody capability does not match custody address")
	}
	if tr.MintAuthority().Address() == tr.Address() {
		t.Fatal("mint authority must differ from custody address")
	}
}
