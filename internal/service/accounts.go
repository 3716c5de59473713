package service

import (
	"context"
	"sync"

	"github.com/solstrike/chipgate/internal/config"
	"github.com/solstrike/chipgate/internal/model"
	"golang.org/x/time/rate"
)

// AccountManager tracks trading accounts and their per-account limiters.
type AccountManager struct {
	mu             sync.RWMutex
	accounts       map[string]*model.Account // Key: Gateway ApiKey
	limiters       map[string]*rate.Limiter  // Key: AccountID
	config         *config.Config
	defaultAccount *model.Account
	repo           AccountRepo
}

type AccountRepo interface {
	GetByApiKey(ctx context.Context, apiKey string) (*model.Account, error)
}

func NewAccountManager(cfg *config.Config, repo AccountRepo) *AccountManager {
	am := &AccountManager{
		accounts: make(map[string]*model.Account),
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
		repo:     repo,
	}

	if len(cfg.Accounts) > 0 {
		for _, accountCfg := range cfg.Accounts {
			account := &model.Account{
				ID:      accountCfg.ID,
				Name:    accountCfg.Name,
				ApiKey:  accountCfg.APIKey,
				Address: accountCfg.Address,
				Rate: model.RateLimitConfig{
					QPS:   chooseQPS(accountCfg.QPS),
					Burst: chooseBurst(accountCfg.Burst),
				},
			}
			am.RegisterAccount(account)
		}
		return am
	}

	// Single-operator mode: one default account.
	defaultAccount := &model.Account{
		ID:      "default-account",
		Name:    "Default User",
		ApiKey:  cfg.Auth.APIKey,
		Address: cfg.Auth.AdminAddress,
		Rate: model.RateLimitConfig{
			QPS:   10,
			Burst: 20,
		},
	}
	if defaultAccount.ApiKey == "" {
		defaultAccount.ApiKey = "sk-default-12345"
	}
	am.RegisterAccount(defaultAccount)
	am.defaultAccount = defaultAccount

	return am
}

func (am *AccountManager) RegisterAccount(a *model.Account) {
	am.mu.Lock()
	defer am.mu.Unlock()
	if a == nil {
		return
	}
	am.accounts[a.ApiKey] = a

	limit := rate.Limit(a.Rate.QPS)
	if limit == 0 {
		limit = rate.Inf
	}
	burst := a.Rate.Burst
	if burst == 0 {
		burst = 1
	}
	am.limiters[a.ID] = rate.NewLimiter(limit, burst)
}

func (am *AccountManager) RemoveAccountByID(id string) {
	am.mu.Lock()
	defer am.mu.Unlock()
	for key, account := range am.accounts {
		if account != nil && account.ID == id {
			delete(am.accounts, key)
			delete(am.limiters, account.ID)
		}
	}
}

func (am *AccountManager) GetByID(id string) (*model.Account, bool) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	for _, account := range am.accounts {
		if account != nil && account.ID == id {
			return account, true
		}
	}
	return nil, false
}

func (am *AccountManager) ListAccounts() []*model.Account {
	am.mu.RLock()
	defer am.mu.RUnlock()
	results := make([]*model.Account, 0, len(am.accounts))
	seen := make(map[string]struct{})
	for _, account := range am.accounts {
		if account == nil {
			continue
		}
		if _, ok := seen[account.ID]; ok {
			continue
		}
		seen[account.ID] = struct{}{}
		results = append(results, account)
	}
	return results
}

func (am *AccountManager) GetByApiKey(apiKey string) (*model.Account, bool) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	a, ok := am.accounts[apiKey]
	return a, ok
}

func (am *AccountManager) GetByApiKeyWithFallback(ctx context.Context, apiKey string) (*model.Account, bool) {
	if a, ok := am.GetByApiKey(apiKey); ok {
		return a, true
	}
	if am.repo == nil {
		return nil, false
	}
	a, err := am.repo.GetByApiKey(ctx, apiKey)
	if err != nil || a == nil {
		return nil, false
	}
	am.RegisterAccount(a)
	return a, true
}

func (am *AccountManager) DefaultAccount() *model.Account {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.defaultAccount
}

func (am *AccountManager) GetLimiterForAccount(accountID string) *rate.Limiter {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.limiters[accountID]
}

func chooseQPS(v float64) float64 {
	if v > 0 {
		return v
	}
	return 10
}

func chooseBurst(v int) int {
	if v > 0 {
		return v
	}
	return 20
}
