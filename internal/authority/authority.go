// Package authority gates administrator-only mutations: price updates, asset
// registration and reward distribution.
package authority

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var ErrUnauthorized = errors.New("authority: caller is not the recognized administrator")

// Authorizer decides whether a caller may perform privileged mutations.
// The static single-key policy below matches the deployed system; swapping
// in a multi-sig or role policy does not touch the exchange or reward logic.
type Authorizer interface {
	IsAuthorized(caller common.Address) bool
}

// StaticKey recognizes exactly one administrator identity.
type StaticKey struct {
	admin common.Address
}

func NewStaticKey(admin common.Address) StaticKey {
	return StaticKey{admin: admin}
}

func (s StaticKey) IsAuthorized(caller common.Address) bool {
	return s.admin != (common.Address{}) && caller == s.admin
}

// Check returns ErrUnauthorized unless the policy recognizes the caller.
func Check(auth Authorizer, caller common.Address) error {
	if auth == nil || !auth.IsAuthorized(caller) {
		return ErrUnauthorized
	}
	return nil
}
