package domain

import "github.com/shopspring/decimal"

// Account is immutable once loaded for the session. Its positions and orders
// live in the engine's store, keyed under the account key.
type Account struct {
	AccountKey    string `json:"account_key"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Nickname      string `json:"nickname,omitempty"`
}

// Balance is the account's cash figure. One per account, replaced wholesale
// on each accepted update.
type Balance struct {
	AccountKey    string          `json:"account_key"`
	Cash          decimal.Decimal `json:"cash"`
	UpdateTime    int64           `json:"update_time,omitempty"`
	VersionNumber int64           `json:"version_number"`
}

// Totals aggregates cost, gains, and net liquidation value. Account totals
// fold the account's positions plus its cash balance; global totals fold all
// account totals. Positions with unknown marks contribute zero open gain and
// net liq.
type Totals struct {
	Cost       decimal.Decimal `json:"cost"`
	OpenGain   decimal.Decimal `json:"open_gain"`
	ClosedGain decimal.Decimal `json:"closed_gain"`
	NetLiq     decimal.Decimal `json:"net_liq"`
}
