package service

import (
	"testing"

	"github.com/solstrike/chipgate/internal/config"
	"github.com/solstrike/chipgate/internal/model"
)

func TestAccountManagerConfigSeeded(t *testing.T) {
	cfg := &config.Config{
		Accounts: []config.AccountConfig{
			{ID: "acct-1", Name: "Alpha", APIKey: "sk-alpha", Address: "0x01", QPS: 5, Burst: 10},
		},
	}
	am := NewAccountManager(cfg, nil)

	account, ok := am.GetByApiKey("sk-alpha")
	if !ok {
		t.Fatalf("config-seeded account not found")
	}
	if account.ID != "acct-1" {
		t.Fatalf("unexpected account: %s", account.ID)
	}
	if am.DefaultAccount() != nil {
		t.Fatalf("no default account expected in multi-account mode")
	}
	if am.GetLimiterForAccount("acct-1") == nil {
		t.Fatalf("limiter missing for seeded account")
	}
}

func TestAccountManagerDefaultFallback(t *testing.T) {
	am := NewAccountManager(&config.Config{}, nil)

	def := am.DefaultAccount()
	if def == nil {
		t.Fatalf("expected default account in single-operator mode")
	}
	if _, ok := am.GetByApiKey(def.ApiKey); !ok {
		t.Fatalf("default account not reachable by api key")
	}
}

func TestAccountManagerRemove(t *testing.T) {
	am := NewAccountManager(&config.Config{}, nil)
	am.RegisterAccount(&model.Account{ID: "acct-2", ApiKey: "sk-two"})

	am.RemoveAccountByID("acct-2")
	if _, ok := am.GetByApiKey("sk-two"); ok {
		t.Fatalf("removed account still resolvable")
	}
	if am.GetLimiterForAccount("acct-2") != nil {
		t.Fatalf("removed account still has limiter")
	}
}
