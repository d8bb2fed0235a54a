package domain

import "time"

// Transaction types. Withdraw-Trade / Deposit-Trade mark balance movements
// caused by trade execution rather than direct deposits/withdrawals.
const (
	TxDeposit       = "Deposit"
	TxWithdraw      = "Withdraw"
	TxWithdrawTrade = "Withdraw-Trade"
	TxDepositTrade  = "Deposit-Trade"
)

// Transaction Model
// Immutable audit record of a single balance change. Never updated or
// deleted after creation.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`            // Primary key
	UserID    uint      `gorm:"index;not null" json:"user_id"`   // User whose balance changed
	CoinID    uint      `gorm:"not null" json:"coin_id"`         // Coin whose balance changed
	Type      string    `gorm:"size:20;not null" json:"type"`    // Deposit, Withdraw, Withdraw-Trade, Deposit-Trade
	Amount    float64   `gorm:"not null" json:"amount"`          // Amount moved
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"` // Creation time
}
