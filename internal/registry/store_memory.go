package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/solstrike/chipgate/internal/model"
)

// InMemStore keeps the price table in process memory. Used by tests and by
// deployments that run without Postgres.
type InMemStore struct {
	mu     sync.RWMutex
	config *model.PriceConfig
	assets map[string]model.AssetPrice
}

func NewInMemStore() *InMemStore {
	return &InMemStore{
		assets: make(map[string]model.AssetPrice),
	}
}

func (s *InMemStore) GetConfig(ctx context.Context) (*model.PriceConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return nil, ErrNotFound
	}
	cfg := *s.config
	return &cfg, nil
}

func (s *InMemStore) InitConfig(ctx context.Context, cfg model.PriceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config != nil {
		return ErrAlreadyInitialized
	}
	s.config = &cfg
	return nil
}

func (s *InMemStore) SetUnitPrice(ctx context.Context, unitPrice uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return ErrNotFound
	}
	s.config.UnitPrice = unitPrice
	return nil
}

func (s *InMemStore) GetAsset(ctx context.Context, assetID string) (*model.AssetPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.assets[assetID]
	if !ok {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (s *InMemStore) RegisterAsset(ctx context.Context, entry model.AssetPrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[entry.AssetID]; ok {
		return ErrAlreadyRegistered
	}
	s.assets[entry.AssetID] = entry
	return nil
}

func (s *InMemStore) RepriceAsset(ctx context.Context, assetID string, unitPrice uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.assets[assetID]
	if !ok {
		return ErrNotFound
	}
	entry.UnitPrice = unitPrice
	s.assets[assetID] = entry
	return nil
}

func (s *InMemStore) ListAssets(ctx context.Context) ([]model.AssetPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AssetPrice, 0, len(s.assets))
	for _, entry := range s.assets {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}
