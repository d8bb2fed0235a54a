package domain

// Coin Model
// PricePerUnit is the last-traded price and acts as the current market price.
// It is only mutated inside the buy transaction, never out of band.
type Coin struct {
	ID           uint    `gorm:"primaryKey" json:"id"`                              // Primary key
	Name         string  `gorm:"size:50;unique;not null" json:"name"`               // Unique coin name
	Symbol       string  `gorm:"size:10;unique;not null" json:"symbol"`             // Unique ticker symbol
	PricePerUnit float64 `gorm:"not null;default:0" json:"price_per_unit"`          // Current market price
}
