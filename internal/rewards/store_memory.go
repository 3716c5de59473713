package rewards

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/solstrike/chipgate/internal/model"
)

// InMemStore keeps claimable rewards in process memory, serialized under one
// lock so every call is a single atomic unit.
type InMemStore struct {
	mu      sync.Mutex
	pending map[string]uint64
	updated map[string]time.Time
}

func NewInMemStore() *InMemStore {
	return &InMemStore{
		pending: make(map[string]uint64),
		updated: make(map[string]time.Time),
	}
}

func (s *InMemStore) Credit(ctx context.Context, credits map[string]uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before touching anything.
	for recipient, amount := range credits {
		if s.pending[recipient] > math.MaxUint64-amount {
			return ErrOverflow
		}
	}
	now := time.Now().UTC()
	for recipient, amount := range credits {
		s.pending[recipient] += amount
		s.updated[recipient] = now
	}
	return nil
}

func (s *InMemStore) Pending(ctx context.Context, recipient string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[recipient], nil
}

func (s *InMemStore) Claim(ctx context.Context, recipient string, fn func(amount uint64) error) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount := s.pending[recipient]
	if err := fn(amount); err != nil {
		return 0, err
	}
	if amount > 0 {
		s.pending[recipient] = 0
		s.updated[recipient] = time.Now().UTC()
	}
	return amount, nil
}

func (s *InMemStore) List(ctx context.Context) ([]model.ClaimableReward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ClaimableReward, 0, len(s.pending))
	for recipient, amount := range s.pending {
		out = append(out, model.ClaimableReward{
			Recipient: recipient,
			Amount:    amount,
			UpdatedAt: s.updated[recipient],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Recipient < out[j].Recipient })
	return out, nil
}
