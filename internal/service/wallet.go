package service

import (
	"context"
	"errors"

	"coin_exchange/internal/domain"

	"gorm.io/gorm"
)

// WalletService exposes read access to a user's wallet.
type WalletService struct {
	db *gorm.DB
}

// NewWalletService creates a WalletService on top of the given store.
func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// Get returns the user's wallet with all holdings and their coin types.
func (s *WalletService) Get(ctx context.Context, userID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.db.WithContext(ctx).Preload("Holdings.Coin").
		Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "User Does Not Exist!")
		}
		return nil, err
	}
	return &wallet, nil
}
