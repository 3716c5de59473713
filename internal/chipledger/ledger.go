// Package chipledger defines the fungible-token ledger the exchange drives.
// The ledger itself is an external collaborator; the exchange only relies on
// the interface below. An in-memory implementation is provided for tests and
// single-node deployments.
package chipledger

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// AssetID names a fungible asset tracked by the ledger.
type AssetID string

const (
	// Native is the base currency chips are priced in.
	Native AssetID = "native"
	// Chip is the minted exchange unit backed by the treasury.
	Chip AssetID = "chip"
)

var (
	ErrInsufficientBalance = errors.New("chipledger: insufficient balance")
	ErrBadCapability       = errors.New("chipledger: capability does not match signer")
	ErrBalanceOverflow     = errors.New("chipledger: balance overflow")
)

// Capability proves authority over a ledger address. Account callers present
// a transport-verified capability; the treasury presents its derived one.
type Capability interface {
	Address() common.Address
}

// AccountCapability is the capability of a caller whose identity the
// transport layer has already authenticated.
type AccountCapability common.Address

func (c AccountCapability) Address() common.Address {
	return common.Address(c)
}

// TokenLedger is the external mint/burn/transfer collaborator. All calls are
// synchronous and fail atomically: a returned error means no balance moved.
type TokenLedger interface {
	BalanceOf(ctx context.Context, holder common.Address, asset AssetID) (uint64, error)

	// Transfer moves amount of asset from one holder to another. The
	// capability must match the sending address.
	Transfer(ctx context.Context, from, to common.Address, amount uint64, asset AssetID, cap Capability) error

	// Mint creates chip units for target. The capability must match the
	// ledger's registered mint authority.
	Mint(ctx context.Context, authority Capability, target common.Address, amount uint64) error

	// Burn destroys chip units held by holder. The capability must match
	// the mint authority.
	Burn(ctx context.Context, holder common.Address, amount uint64, authority Capability) error
}
