package api

import (
	"coin_exchange/internal/service" // Service layer
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// SellRequest is the payload for placing a sell order. Amount and price are
// validated by the trade engine so non-positive values get its exact error.
type SellRequest struct {
	CoinID       uint    `json:"coin_id" binding:"required"` // Coin to sell
	Amount       float64 `json:"amount"`                     // Quantity to sell
	PricePerUnit float64 `json:"price_per_unit"`             // Asking price per unit
}

// BuyRequest is the payload for consuming an open sell order
type BuyRequest struct {
	TradeID       uint `json:"trade_id" binding:"required"`        // Sell order to consume
	WalletID      uint `json:"wallet_id" binding:"required"`       // Buyer's wallet
	PaymentCoinID uint `json:"payment_coin_id" binding:"required"` // Coin the buyer pays with
}

// SellHandler places a sell order for the authenticated user
func SellHandler(trades *service.TradeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req SellRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Place the order; the sold amount is escrowed immediately
		trade, err := trades.Sell(c.Request.Context(), userID, req.CoinID, req.Amount, req.PricePerUnit)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, trade) // Return the created sell order
	}
}

// GetOpenOrdersHandler returns all open sell orders for a coin
func GetOpenOrdersHandler(trades *service.TradeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse the coin ID path parameter
		coinID, err := strconv.ParseUint(c.Param("coinId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coin id"})
			return
		}
		orders, err := trades.GetOpenOrders(c.Request.Context(), uint(coinID)) // Fetch open orders
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders}) // Return the order book
	}
}

// BuyHandler consumes an open sell order in full
func BuyHandler(trades *service.TradeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BuyRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Execute the buy atomically
		trade, err := trades.Buy(c.Request.Context(), req.TradeID, req.WalletID, req.PaymentCoinID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, trade) // Return the buyer's execution record
	}
}
