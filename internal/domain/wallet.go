package domain

// Wallet Model
type Wallet struct {
	ID       uint          `gorm:"primaryKey" json:"id"`                                               // Primary key
	UserID   uint          `gorm:"uniqueIndex;not null" json:"user_id"`                                // Foreign key to User, one wallet per user
	Name     string        `json:"name"`                                                               // Display name, "First Last" at registration
	Holdings []CoinHolding `gorm:"constraint:OnDelete:CASCADE;" json:"coins_wallet,omitempty"`         // Per-coin balances owned by this wallet
}
