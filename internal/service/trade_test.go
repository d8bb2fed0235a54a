package service

import (
	"context"
	"testing"
	"time"

	"coin_exchange/internal/db"
	"coin_exchange/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tradeFixture is the spec scenario baseline: BTC at 123, a seller holding
// 120 BTC, and a second payment coin.
type tradeFixture struct {
	gdb      *gorm.DB
	balances *BalanceService
	trades   *TradeService
	seller   domain.User
	buyer    domain.User
	btc      domain.Coin
	sln      domain.Coin
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	gdb := db.SetupTestDB(t)
	f := &tradeFixture{
		gdb:      gdb,
		balances: NewBalanceService(gdb),
		trades:   NewTradeService(gdb, nil),
		seller:   seedUser(t, gdb, "seller@example.com"),
		buyer:    seedUser(t, gdb, "buyer@example.com"),
		btc:      seedCoin(t, gdb, "Bitcoin", "BTC", 123),
		sln:      seedCoin(t, gdb, "Solana", "SLN", 100),
	}
	_, err := f.balances.Deposit(context.Background(), f.seller.ID, f.btc.ID, 120)
	require.NoError(t, err)
	return f
}

func (f *tradeFixture) coinPrice(t *testing.T, coinID uint) float64 {
	t.Helper()
	var coin domain.Coin
	require.NoError(t, f.gdb.First(&coin, coinID).Error)
	return coin.PricePerUnit
}

func TestSellEscrowsBalance(t *testing.T) {
	f := newTradeFixture(t)

	trade, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 110, 128)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSell, trade.TradeType)
	assert.Equal(t, 128.0, trade.Price)
	assert.Equal(t, 110.0, trade.Quantity)
	assert.Equal(t, f.btc.ID, trade.CoinID)

	// Funds leave the spendable balance at placement, not at match time.
	assert.Equal(t, 10.0, holdingAmount(t, f.gdb, f.seller.Wallet.ID, f.btc.ID))

	var record domain.Transaction
	require.NoError(t, f.gdb.Where("user_id = ? AND type = ?", f.seller.ID, domain.TxWithdrawTrade).First(&record).Error)
	assert.Equal(t, 110.0, record.Amount)
	assert.Equal(t, f.btc.ID, record.CoinID)
}

func TestSellRejectsPriceOutsideBand(t *testing.T) {
	f := newTradeFixture(t)

	for _, price := range []float64{134, 112} {
		_, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 10, price)
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindInvalidArgument))
		assert.EqualError(t, err, "Price must be within ±10 of current market price")
	}

	// The band is inclusive at both edges.
	_, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 10, 133)
	assert.NoError(t, err)
	_, err = f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 10, 113)
	assert.NoError(t, err)
}

func TestSellRejectsNonPositiveInputs(t *testing.T) {
	f := newTradeFixture(t)

	_, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, -7, 123)
	require.Error(t, err)
	assert.EqualError(t, err, "Amount and Price Per Unit Should be greater than 0.")

	_, err = f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 10, -10)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidArgument))
}

func TestSellInsufficientBalance(t *testing.T) {
	f := newTradeFixture(t)

	_, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 160, 123)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindFailedPrecondition))
	assert.EqualError(t, err, "Insufficient balance!")

	// Escrow did not fire.
	assert.Equal(t, 120.0, holdingAmount(t, f.gdb, f.seller.Wallet.ID, f.btc.ID))
}

func TestSellUnknownCoinAndWallet(t *testing.T) {
	f := newTradeFixture(t)

	_, err := f.trades.Sell(context.Background(), f.seller.ID, 999, 10, 123)
	assert.EqualError(t, err, "Coin not found.")

	noWallet := domain.User{FirstName: "No", LastName: "Wallet", Email: "nw@example.com", Password: "x"}
	require.NoError(t, f.gdb.Omit(clause.Associations).Create(&noWallet).Error)
	_, err = f.trades.Sell(context.Background(), noWallet.ID, f.btc.ID, 10, 123)
	assert.EqualError(t, err, "Wallet not found for user.")
}

func TestGetOpenOrders(t *testing.T) {
	f := newTradeFixture(t)

	_, err := f.trades.GetOpenOrders(context.Background(), f.btc.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.EqualError(t, err, "No sell orders available for this coin!")

	first, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 30, 125)
	require.NoError(t, err)
	second, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 40, 130)
	require.NoError(t, err)

	orders, err := f.trades.GetOpenOrders(context.Background(), f.btc.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, second.ID, orders[1].ID)
}

func TestGetOpenOrdersExcludesCompletedAndBuys(t *testing.T) {
	f := newTradeFixture(t)

	sell, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 10, 128)
	require.NoError(t, err)
	open, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 20, 128)
	require.NoError(t, err)

	// Buyer funded with enough SLN value to consume the first order.
	_, err = f.balances.Deposit(context.Background(), f.buyer.ID, f.sln.ID, 50)
	require.NoError(t, err)
	_, err = f.trades.Buy(context.Background(), sell.ID, f.buyer.Wallet.ID, f.sln.ID)
	require.NoError(t, err)

	orders, err := f.trades.GetOpenOrders(context.Background(), f.btc.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, open.ID, orders[0].ID)
}

func TestBuyExecutesFullScenario(t *testing.T) {
	f := newTradeFixture(t)

	// Seller posts 110 BTC at 128; buyer holds 150 SLN worth 15000 at the
	// SLN market price of 100.
	sell, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 110, 128)
	require.NoError(t, err)
	_, err = f.balances.Deposit(context.Background(), f.buyer.ID, f.sln.ID, 150)
	require.NoError(t, err)

	buy, err := f.trades.Buy(context.Background(), sell.ID, f.buyer.Wallet.ID, f.sln.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeBuy, buy.TradeType)
	assert.Equal(t, 128.0, buy.Price)
	assert.Equal(t, 110.0, buy.Quantity)
	assert.Equal(t, f.btc.ID, buy.CoinID)
	assert.Equal(t, f.buyer.ID, buy.UserID)

	// Cost 128*110 = 14080, debited as 14080/100 = 140.8 SLN.
	assert.InDelta(t, 150-140.8, holdingAmount(t, f.gdb, f.buyer.Wallet.ID, f.sln.ID), 1e-9)
	assert.Equal(t, 110.0, holdingAmount(t, f.gdb, f.buyer.Wallet.ID, f.btc.ID))

	// The executed price becomes BTC's market price; SLN is untouched.
	assert.Equal(t, 128.0, f.coinPrice(t, f.btc.ID))
	assert.Equal(t, 100.0, f.coinPrice(t, f.sln.ID))

	// The sell order is terminally completed.
	var done domain.Trade
	require.NoError(t, f.gdb.First(&done, sell.ID).Error)
	assert.Equal(t, domain.TradeSellDone, done.TradeType)

	// Three transaction records: buyer debit, buyer credit, seller credit.
	var records []domain.Transaction
	require.NoError(t, f.gdb.Where("type IN ?", []string{domain.TxDepositTrade}).
		Or("user_id = ? AND type = ? AND coin_id = ?", f.buyer.ID, domain.TxWithdrawTrade, f.sln.ID).
		Find(&records).Error)
	require.Len(t, records, 3)

	var buyerDebit, buyerCredit, sellerCredit *domain.Transaction
	for i := range records {
		r := &records[i]
		switch {
		case r.UserID == f.buyer.ID && r.Type == domain.TxWithdrawTrade:
			buyerDebit = r
		case r.UserID == f.buyer.ID && r.Type == domain.TxDepositTrade:
			buyerCredit = r
		case r.UserID == f.seller.ID && r.Type == domain.TxDepositTrade:
			sellerCredit = r
		}
	}
	require.NotNil(t, buyerDebit)
	require.NotNil(t, buyerCredit)
	require.NotNil(t, sellerCredit)
	assert.InDelta(t, 140.8, buyerDebit.Amount, 1e-9)
	assert.Equal(t, f.sln.ID, buyerDebit.CoinID)
	assert.Equal(t, 110.0, buyerCredit.Amount)
	assert.Equal(t, f.btc.ID, buyerCredit.CoinID)
	assert.InDelta(t, 140.8, sellerCredit.Amount, 1e-9)
	assert.Equal(t, f.sln.ID, sellerCredit.CoinID)
}

func TestBuyTwiceReturnsNotFound(t *testing.T) {
	f := newTradeFixture(t)

	sell, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 10, 128)
	require.NoError(t, err)
	_, err = f.balances.Deposit(context.Background(), f.buyer.ID, f.sln.ID, 100)
	require.NoError(t, err)

	_, err = f.trades.Buy(context.Background(), sell.ID, f.buyer.Wallet.ID, f.sln.ID)
	require.NoError(t, err)

	_, err = f.trades.Buy(context.Background(), sell.ID, f.buyer.Wallet.ID, f.sln.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.EqualError(t, err, "Sell order not found or already completed.")
}

func TestBuyInsufficientValue(t *testing.T) {
	f := newTradeFixture(t)

	sell, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 110, 128)
	require.NoError(t, err)
	// 100 SLN at price 100 is worth 10000, below the 14080 cost.
	_, err = f.balances.Deposit(context.Background(), f.buyer.ID, f.sln.ID, 100)
	require.NoError(t, err)

	_, err = f.trades.Buy(context.Background(), sell.ID, f.buyer.Wallet.ID, f.sln.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindFailedPrecondition))
	assert.EqualError(t, err, "Insufficient balance to complete this purchase.")

	// Nothing moved: order still open, balances intact.
	var still domain.Trade
	require.NoError(t, f.gdb.First(&still, sell.ID).Error)
	assert.Equal(t, domain.TradeSell, still.TradeType)
	assert.Equal(t, 100.0, holdingAmount(t, f.gdb, f.buyer.Wallet.ID, f.sln.ID))
}

func TestBuyMissingWalletOrPaymentHolding(t *testing.T) {
	f := newTradeFixture(t)

	sell, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 10, 128)
	require.NoError(t, err)

	_, err = f.trades.Buy(context.Background(), sell.ID, 999, f.sln.ID)
	assert.EqualError(t, err, "Wallet not found.")

	// Buyer wallet exists but holds no SLN at all.
	_, err = f.trades.Buy(context.Background(), sell.ID, f.buyer.Wallet.ID, f.sln.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.EqualError(t, err, "Payment currency not found in your wallet.")
}

func TestBuyDropsQuoteSnapshot(t *testing.T) {
	f := newTradeFixture(t)
	cache := newFakeQuoteCache()
	trades := NewTradeService(f.gdb, cache)

	sell, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 10, 128)
	require.NoError(t, err)
	_, err = f.balances.Deposit(context.Background(), f.buyer.ID, f.sln.ID, 100)
	require.NoError(t, err)

	require.NoError(t, cache.Set(context.Background(), "coins", []domain.Coin{f.btc, f.sln}, time.Minute))

	_, err = trades.Buy(context.Background(), sell.ID, f.buyer.Wallet.ID, f.sln.ID)
	require.NoError(t, err)

	// The executed trade moved BTC's price, so the snapshot must be gone.
	var coins []domain.Coin
	found, err := cache.Get(context.Background(), "coins", &coins)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConcurrentBuysConsumeOrderOnce(t *testing.T) {
	f := newTradeFixture(t)

	sell, err := f.trades.Sell(context.Background(), f.seller.ID, f.btc.ID, 10, 128)
	require.NoError(t, err)
	_, err = f.balances.Deposit(context.Background(), f.buyer.ID, f.sln.ID, 1000)
	require.NoError(t, err)

	// Two concurrent buys of the same order: exactly one succeeds, the
	// other observes the order already completed.
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := f.trades.Buy(context.Background(), sell.ID, f.buyer.Wallet.ID, f.sln.ID)
			results <- err
		}()
	}

	var failures int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			assert.True(t, domain.IsKind(err, domain.KindNotFound))
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	// The buyer was charged exactly once: 128*10/100 = 12.8 SLN.
	assert.InDelta(t, 1000-12.8, holdingAmount(t, f.gdb, f.buyer.Wallet.ID, f.sln.ID), 1e-9)
	assert.Equal(t, 10.0, holdingAmount(t, f.gdb, f.buyer.Wallet.ID, f.btc.ID))
}
