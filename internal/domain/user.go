package domain

// User Model
type User struct {
	ID           uint          `gorm:"primaryKey" json:"id"`                                 // Primary key
	FirstName    string        `gorm:"not null" json:"first_name"`                           // First name
	LastName     string        `gorm:"not null" json:"last_name"`                            // Last name
	Email        string        `gorm:"unique;not null" json:"email"`                         // Unique email, used for login
	Password     string        `gorm:"not null" json:"-"`                                    // Hashed password, never serialized
	Wallet       Wallet        `gorm:"constraint:OnDelete:CASCADE;" json:"wallet,omitempty"` // One-to-one relationship with Wallet
	Trades       []Trade       `json:"trades,omitempty"`                                     // Trade history (append-only)
	Transactions []Transaction `json:"transactions,omitempty"`                               // Transaction log (append-only)
}
