package service

import (
	"context"
	"errors"

	"coin_exchange/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CoinService manages the tradable coin catalog.
type CoinService struct {
	db *gorm.DB
}

// NewCoinService creates a CoinService on top of the given store.
func NewCoinService(db *gorm.DB) *CoinService {
	return &CoinService{db: db}
}

// Add registers a new coin type. Name and symbol are unique; a duplicate of
// either is a conflict.
func (s *CoinService) Add(ctx context.Context, name, symbol string, pricePerUnit float64) (*domain.Coin, error) {
	coin := domain.Coin{Name: name, Symbol: symbol, PricePerUnit: pricePerUnit}
	if err := s.db.WithContext(ctx).Create(&coin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewError(domain.KindConflict, "Coin name or symbol already exists")
		}
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"coin_id":        coin.ID,
		"symbol":         symbol,
		"price_per_unit": pricePerUnit,
	}).Info("Coin added")
	return &coin, nil
}

// Get returns one coin by ID.
func (s *CoinService) Get(ctx context.Context, coinID uint) (*domain.Coin, error) {
	var coin domain.Coin
	if err := s.db.WithContext(ctx).First(&coin, coinID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "Coin Was Not Found!")
		}
		return nil, err
	}
	return &coin, nil
}

// List returns all coins. This is the authoritative price source the price
// feed cache is filled from.
func (s *CoinService) List(ctx context.Context) ([]domain.Coin, error) {
	var coins []domain.Coin
	if err := s.db.WithContext(ctx).Find(&coins).Error; err != nil {
		return nil, err
	}
	return coins, nil
}
