package domain

// CoinHolding Model
// At most one row per (wallet, coin) pair; Amount never goes below zero
// after a completed operation.
type CoinHolding struct {
	ID       uint    `gorm:"primaryKey" json:"id"`                                  // Primary key
	WalletID uint    `gorm:"uniqueIndex:uix_wallet_coin;not null" json:"wallet_id"` // Foreign key to Wallet
	CoinID   uint    `gorm:"uniqueIndex:uix_wallet_coin;not null" json:"coin_id"`   // Foreign key to Coin
	Amount   float64 `gorm:"not null;default:0" json:"amount"`                      // Quantity held
	Coin     Coin    `json:"coin_type,omitempty"`                                   // Coin type for display
}
