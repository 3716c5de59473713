// Package registry holds the chip price table: the singleton native-currency
// config plus one entry per registered payment asset.
package registry

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/solstrike/chipgate/internal/authority"
	"github.com/solstrike/chipgate/internal/model"
	"github.com/solstrike/chipgate/internal/pkg/logger"
	"github.com/solstrike/chipgate/internal/treasury"
)

var (
	ErrAlreadyInitialized = errors.New("registry: price config already initialized")
	ErrAlreadyRegistered  = errors.New("registry: asset already registered")
	ErrNotFound           = errors.New("registry: price entry not found")
)

// Store persists the price records. Implementations must apply each call
// atomically: a returned error means nothing changed.
type Store interface {
	GetConfig(ctx context.Context) (*model.PriceConfig, error)
	InitConfig(ctx context.Context, cfg model.PriceConfig) error
	SetUnitPrice(ctx context.Context, unitPrice uint64) error

	GetAsset(ctx context.Context, assetID string) (*model.AssetPrice, error)
	RegisterAsset(ctx context.Context, entry model.AssetPrice) error
	RepriceAsset(ctx context.Context, assetID string, unitPrice uint64) error
	ListAssets(ctx context.Context) ([]model.AssetPrice, error)
}

// Registry applies the admin-gated price mutations and serves lookups to the
// exchange engine.
type Registry struct {
	store Store
	auth  authority.Authorizer
}

func New(store Store, auth authority.Authorizer) *Registry {
	return &Registry{store: store, auth: auth}
}

// Initialize creates the singleton price config. It fails with
// ErrAlreadyInitialized when re-invoked against an existing record.
func (r *Registry) Initialize(ctx context.Context, caller common.Address, unitPrice uint64) (*model.PriceConfig, error) {
	if err := authority.Check(r.auth, caller); err != nil {
		return nil, err
	}
	_, bump := treasury.Derive(treasury.SeedPriceConfig)
	cfg := model.PriceConfig{UnitPrice: unitPrice, Bump: bump}
	if err := r.store.InitConfig(ctx, cfg); err != nil {
		return nil, err
	}
	logger.Info("price config initialized", "unit_price", unitPrice)
	return &cfg, nil
}

// SetUnitPrice overwrites the native chip price. No bounds are enforced; a
// zero price makes chips free, which is logged but allowed.
func (r *Registry) SetUnitPrice(ctx context.Context, caller common.Address, unitPrice uint64) error {
	if err := authority.Check(r.auth, caller); err != nil {
		return err
	}
	if unitPrice == 0 {
		logger.Warn("native chip price set to zero")
	}
	return r.store.SetUnitPrice(ctx, unitPrice)
}

// RegisterAsset creates the price entry for a new payment asset.
func (r *Registry) RegisterAsset(ctx context.Context, caller common.Address, assetID string, unitPrice uint64) (*model.AssetPrice, error) {
	if err := authority.Check(r.auth, caller); err != nil {
		return nil, err
	}
	_, bump := treasury.Derive(treasury.SeedAssetPrice, assetID)
	entry := model.AssetPrice{AssetID: assetID, UnitPrice: unitPrice, Bump: bump}
	if err := r.store.RegisterAsset(ctx, entry); err != nil {
		return nil, err
	}
	logger.Info("payment asset registered", "asset_id", assetID, "unit_price", unitPrice)
	return &entry, nil
}

// RepriceAsset overwrites the price of a registered asset.
func (r *Registry) RepriceAsset(ctx context.Context, caller common.Address, assetID string, unitPrice uint64) error {
	if err := authority.Check(r.auth, caller); err != nil {
		return err
	}
	if unitPrice == 0 {
		logger.Warn("asset chip price set to zero", "asset_id", assetID)
	}
	return r.store.RepriceAsset(ctx, assetID, unitPrice)
}

// UnitPrice resolves the chip price for the chosen payment asset, or the
// native config when assetID is empty.
func (r *Registry) UnitPrice(ctx context.Context, assetID string) (uint64, error) {
	if assetID == "" {
		cfg, err := r.store.GetConfig(ctx)
		if err != nil {
			return 0, err
		}
		return cfg.UnitPrice, nil
	}
	entry, err := r.store.GetAsset(ctx, assetID)
	if err != nil {
		return 0, err
	}
	return entry.UnitPrice, nil
}

// List returns the full price table for the read endpoint.
func (r *Registry) List(ctx context.Context) (*model.PriceListResponse, error) {
	resp := &model.PriceListResponse{Assets: []model.AssetPrice{}}
	cfg, err := r.store.GetConfig(ctx)
	if err == nil {
		resp.Native = cfg
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	assets, err := r.store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	resp.Assets = assets
	return resp, nil
}
