package domain

import "time"

// Trade type states. A Sell order transitions to SellDone exactly once,
// when fully consumed by a buy. Buy records are terminal on creation.
const (
	TradeSell     = "Sell"
	TradeSellDone = "Sell-Done"
	TradeBuy      = "Buy"
)

// Trade Model
type Trade struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                 // Primary key
	UserID    uint      `gorm:"index;not null" json:"user_id"`        // User who placed the order
	CoinID    uint      `gorm:"index;not null" json:"coin_id"`        // Coin being traded
	TradeType string    `gorm:"size:20;not null" json:"trade_type"`   // Sell, Sell-Done or Buy
	Price     float64   `gorm:"not null" json:"price"`                // Quoted per-unit price at order time
	Quantity  float64   `gorm:"not null" json:"quantity"`             // Full order quantity, no partial fills
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`      // Creation time
}
