package service

import (
	"context"
	"errors"

	"coin_exchange/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BalanceService applies deposit/withdraw mutations to a wallet's per-coin
// balance and emits a transaction record for each mutation. Every operation
// runs as one database transaction: the holding change and its audit record
// commit together or not at all.
type BalanceService struct {
	db *gorm.DB
}

// NewBalanceService creates a BalanceService on top of the given store.
func NewBalanceService(db *gorm.DB) *BalanceService {
	return &BalanceService{db: db}
}

// Deposit credits amount of the given coin to the user's wallet, creating the
// holding if the wallet has never held this coin before.
func (s *BalanceService) Deposit(ctx context.Context, userID, coinID uint, amount float64) (*domain.Transaction, error) {
	var record domain.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coin domain.Coin
		if err := tx.First(&coin, coinID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewError(domain.KindNotFound, "Coin not found.")
			}
			return err
		}
		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewError(domain.KindNotFound, "Wallet not found for user.")
			}
			return err
		}
		if amount <= 0 {
			return domain.NewError(domain.KindInvalidArgument, "Price Should be greate than 0.")
		}

		var holding domain.CoinHolding
		err := tx.Where("wallet_id = ? AND coin_id = ?", wallet.ID, coinID).First(&holding).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			holding = domain.CoinHolding{WalletID: wallet.ID, CoinID: coinID, Amount: amount}
			if err := tx.Create(&holding).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&holding).Update("amount", gorm.Expr("amount + ?", amount)).Error; err != nil {
				return err
			}
		}

		record = domain.Transaction{UserID: userID, CoinID: coinID, Type: domain.TxDeposit, Amount: amount}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"coin_id": coinID,
		"amount":  amount,
		"type":    domain.TxDeposit,
	}).Info("Deposit transaction")
	return &record, nil
}

// Withdraw debits amount of the given coin from the user's wallet. The
// decrement is a guarded conditional update (amount >= requested), so the
// balance can never go negative even under concurrent withdrawals: whichever
// statement matches zero rows loses and the operation aborts.
func (s *BalanceService) Withdraw(ctx context.Context, userID, coinID uint, amount float64) (*domain.Transaction, error) {
	var record domain.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coin domain.Coin
		if err := tx.First(&coin, coinID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewError(domain.KindNotFound, "Coin not found.")
			}
			return err
		}
		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewError(domain.KindNotFound, "Wallet not found for user.")
			}
			return err
		}
		if amount <= 0 {
			return domain.NewError(domain.KindInvalidArgument, "Price Should be greate than 0.")
		}

		// Absent holding, zero balance and insufficient balance all fall
		// through here as zero rows affected.
		res := tx.Model(&domain.CoinHolding{}).
			Where("wallet_id = ? AND coin_id = ? AND amount >= ?", wallet.ID, coinID, amount).
			Update("amount", gorm.Expr("amount - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NewError(domain.KindFailedPrecondition, "Un-Sufficient Balance!")
		}

		record = domain.Transaction{UserID: userID, CoinID: coinID, Type: domain.TxWithdraw, Amount: amount}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"coin_id": coinID,
		"amount":  amount,
		"type":    domain.TxWithdraw,
	}).Info("Withdraw transaction")
	return &record, nil
}
