package service

import (
	"context"
	"errors"

	"coin_exchange/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Allowed distance of a sell order's price from the coin's current market
// price, in price units.
const priceBand = 10.0

// TradeService creates sell orders, matches buy requests against them, moves
// coin balances between buyer and seller wallets and updates the market
// price. Each operation is a single all-or-nothing database transaction.
//
// Conflicting updates on the same holding or sell order are serialized with
// guarded conditional UPDATEs: the statement only matches a row that is still
// in the expected state, and zero rows affected means another request got
// there first.
type TradeService struct {
	db    *gorm.DB
	cache QuoteCache
}

// NewTradeService creates a TradeService on top of the given store. cache may
// be nil; when set, the quote snapshot is invalidated after a price-moving
// trade instead of waiting out its TTL.
func NewTradeService(db *gorm.DB, cache QuoteCache) *TradeService {
	return &TradeService{db: db, cache: cache}
}

// Sell places a sell order. The sold quantity is escrowed immediately, i.e.
// removed from the seller's spendable balance at placement rather than at
// match time, so a seller cannot stack orders beyond their actual holdings.
// The quoted price must be within ±10 of the coin's current market price.
func (s *TradeService) Sell(ctx context.Context, userID, coinID uint, amount, pricePerUnit float64) (*domain.Trade, error) {
	var trade domain.Trade
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
		if amount <= 0 || pricePerUnit <= 0 {
			return domain.NewError(domain.KindInvalidArgument, "Amount and Price Per Unit Should be greater than 0.")
		}
		if pricePerUnit < coin.PricePerUnit-priceBand || pricePerUnit > coin.PricePerUnit+priceBand {
			return domain.NewError(domain.KindInvalidArgument, "Price must be within ±10 of current market price")
		}

		// Escrow: guarded debit of the seller's holding. Zero rows affected
		// covers a missing holding, a zero balance and a concurrent spend.
		res := tx.Model(&domain.CoinHolding{}).
			Where("wallet_id = ? AND coin_id = ? AND amount >= ?", wallet.ID, coinID, amount).
			Update("amount", gorm.Expr("amount - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NewError(domain.KindFailedPrecondition, "Insufficient balance!")
		}

		trade = domain.Trade{
			UserID:    userID,
			CoinID:    coinID,
			TradeType: domain.TradeSell,
			Price:     pricePerUnit,
			Quantity:  amount,
		}
		if err := tx.Create(&trade).Error; err != nil {
			return err
		}
		escrow := domain.Transaction{UserID: userID, CoinID: coinID, Type: domain.TxWithdrawTrade, Amount: amount}
		return tx.Create(&escrow).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":        userID,
		"coin_id":        coinID,
		"amount":         amount,
		"price_per_unit": pricePerUnit,
		"trade_id":       trade.ID,
	}).Info("Sell order placed")
	return &trade, nil
}

// GetOpenOrders returns all open sell orders for a coin. An empty order book
// is reported as not found; there is no distinction between an unknown coin
// and a coin with no open orders.
func (s *TradeService) GetOpenOrders(ctx context.Context, coinID uint) ([]domain.Trade, error) {
	var trades []domain.Trade
	if err := s.db.WithContext(ctx).
		Where("coin_id = ? AND trade_type = ?", coinID, domain.TradeSell).
		Find(&trades).Error; err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, domain.NewError(domain.KindNotFound, "No sell orders available for this coin!")
	}
	return trades, nil
}

// Buy consumes an open sell order in full. The buyer pays with paymentCoinID:
// the order's total cost (price × quantity) is converted into payment-coin
// units at the payment coin's current market price, that quantity is debited
// from the buyer, the traded quantity is credited to the buyer, the sell
// order transitions to Sell-Done, three transaction records are appended
// (buyer debit, buyer credit, seller credit) and the traded coin's market
// price becomes the executed price.
//
// The Sell to Sell-Done transition is the serialization point: of two
// concurrent buys against the same order, exactly one flips the row and the
// other observes it already completed.
func (s *TradeService) Buy(ctx context.Context, tradeID, buyerWalletID, paymentCoinID uint) (*domain.Trade, error) {
	var buyTrade domain.Trade
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trade domain.Trade
		if err := tx.Where("id = ? AND trade_type = ?", tradeID, domain.TradeSell).First(&trade).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewError(domain.KindNotFound, "Sell order not found or already completed.")
			}
			return err
		}
		var wallet domain.Wallet
		if err := tx.First(&wallet, buyerWalletID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewError(domain.KindNotFound, "Wallet not found.")
			}
			return err
		}
		var payment domain.CoinHolding
		if err := tx.Where("wallet_id = ? AND coin_id = ?", wallet.ID, paymentCoinID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewError(domain.KindNotFound, "Payment currency not found in your wallet.")
			}
			return err
		}
		var paymentCoin domain.Coin
		if err := tx.First(&paymentCoin, paymentCoinID).Error; err != nil {
			return err
		}

		// Cost is denominated in the traded coin's quoted price; the buyer's
		// payment holding is valued at the payment coin's own market price.
		totalCost := trade.Price * trade.Quantity
		buyerBalanceValue := payment.Amount * paymentCoin.PricePerUnit
		if totalCost > buyerBalanceValue {
			return domain.NewError(domain.KindFailedPrecondition, "Insufficient balance to complete this purchase.")
		}
		paymentAmount := totalCost / paymentCoin.PricePerUnit

		// Consume the order. This is a one-way transition: once Sell-Done,
		// a trade can never be bought again.
		res := tx.Model(&domain.Trade{}).
			Where("id = ? AND trade_type = ?", trade.ID, domain.TradeSell).
			Update("trade_type", domain.TradeSellDone)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NewError(domain.KindNotFound, "Sell order not found or already completed.")
		}

		// Debit the buyer's payment holding, guarded against concurrent
		// spends of the same holding.
		res = tx.Model(&domain.CoinHolding{}).
			Where("id = ? AND amount >= ?", payment.ID, paymentAmount).
			Update("amount", gorm.Expr("amount - ?", paymentAmount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NewError(domain.KindFailedPrecondition, "Insufficient balance to complete this purchase.")
		}

		// Credit the traded coin to the buyer, creating the holding if absent.
		var purchased domain.CoinHolding
		err := tx.Where("wallet_id = ? AND coin_id = ?", wallet.ID, trade.CoinID).First(&purchased).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			purchased = domain.CoinHolding{WalletID: wallet.ID, CoinID: trade.CoinID, Amount: trade.Quantity}
			if err := tx.Create(&purchased).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&purchased).Update("amount", gorm.Expr("amount + ?", trade.Quantity)).Error; err != nil {
				return err
			}
		}

		buyTrade = domain.Trade{
			UserID:    wallet.UserID,
			CoinID:    trade.CoinID,
			TradeType: domain.TradeBuy,
			Price:     trade.Price,
			Quantity:  trade.Quantity,
		}
		if err := tx.Create(&buyTrade).Error; err != nil {
			return err
		}

		records := []domain.Transaction{
			{UserID: wallet.UserID, CoinID: paymentCoinID, Type: domain.TxWithdrawTrade, Amount: paymentAmount},
			{UserID: wallet.UserID, CoinID: trade.CoinID, Type: domain.TxDepositTrade, Amount: trade.Quantity},
			{UserID: trade.UserID, CoinID: paymentCoinID, Type: domain.TxDepositTrade, Amount: paymentAmount},
		}
		if err := tx.Create(&records).Error; err != nil {
			return err
		}

		// The executed price becomes the coin's new market price.
		return tx.Model(&domain.Coin{}).
			Where("id = ?", trade.CoinID).
			Update("price_per_unit", trade.Price).Error
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		// The executed trade moved the market price; drop the stale snapshot.
		if err := s.cache.Delete(ctx, quoteCacheKey); err != nil {
			logrus.WithError(err).Warn("Failed to invalidate quote cache")
		}
	}
	logrus.WithFields(logrus.Fields{
		"trade_id":        tradeID,
		"buyer_wallet_id": buyerWalletID,
		"payment_coin_id": paymentCoinID,
		"coin_id":         buyTrade.CoinID,
		"quantity":        buyTrade.Quantity,
		"price":           buyTrade.Price,
	}).Info("Buy executed")
	return &buyTrade, nil
}
