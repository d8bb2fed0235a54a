package api

import (
	"coin_exchange/internal/service" // Service layer
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// BalanceRequest is the payload for deposit and withdraw. Amount is validated
// by the balance engine so non-positive values get the engine's own error.
type BalanceRequest struct {
	CoinID uint    `json:"coin_id" binding:"required"` // Coin to move
	Amount float64 `json:"amount"`                     // Amount to move
}

// GetWalletHandler returns the authenticated user's wallet with all holdings
func GetWalletHandler(wallets *service.WalletService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		wallet, err := wallets.Get(c.Request.Context(), userID) // Fetch the wallet
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": wallet}) // Return wallet info
	}
}

// DepositHandler credits a coin amount to the authenticated user's wallet
func DepositHandler(balances *service.BalanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req BalanceRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Execute the deposit atomically
		record, err := balances.Deposit(c.Request.Context(), userID, req.CoinID, req.Amount)
		if err != nil {
			writeError(c, err)
			return
		}
		// Return the created transaction record
		c.JSON(http.StatusOK, gin.H{"transaction": record})
	}
}

// WithdrawHandler debits a coin amount from the authenticated user's wallet
func WithdrawHandler(balances *service.BalanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req BalanceRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Execute the withdrawal atomically
		record, err := balances.Withdraw(c.Request.Context(), userID, req.CoinID, req.Amount)
		if err != nil {
			writeError(c, err)
			return
		}
		// Return the created transaction record
		c.JSON(http.StatusOK, gin.H{"transaction": record})
	}
}
