package authority

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestStaticKeyRecognizesOnlyAdmin(t *testing.T) {
	admin := common.HexToAddress("0x00000000000000000000000000000000000000ad")
	other := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	policy := NewStaticKey(admin)
	if !policy.IsAuthorized(admin) {
		t.Fatal("admin not recognized")
	}
	if policy.IsAuthorized(other) {
		t.Fatal("non-admin recognized")
	}
	if err := Check(policy, other); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := Check(policy, admin); err != nil {
		t.Fatalf("admin check failed: %v", err)
	}
}

func TestZeroAdminAuthorizesNobody(t *testing.T) {
	policy := NewStaticKey(common.Address{})
	if policy.IsAuthorized(common.Address{}) {
		t.Fatal("zero admin must not authorize the zero address")
	}
}
