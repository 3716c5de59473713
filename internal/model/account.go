package model

// RateLimitConfig defines per-account throttling.
type RateLimitConfig struct {
	QPS   float64 `json:"qps"`
	Burst int     `json:"burst"`
}

// Account represents one authenticated caller of the exchange. The Address
// is the caller's ledger identity: chip and payment balances live under it.
type Account struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	ApiKey  string          `json:"api_key"` // gateway access key issued to the account
	Address string          `json:"address"` // hex ledger address
	Rate    RateLimitConfig `json:"rate_limit"`
}
