package api

import (
	"coin_exchange/internal/service" // Service layer
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// AddCoinRequest is the payload for registering a new coin type
type AddCoinRequest struct {
	Name         string  `json:"name" binding:"required"`   // Unique coin name
	Symbol       string  `json:"symbol" binding:"required"` // Unique ticker symbol
	PricePerUnit float64 `json:"price_per_unit"`            // Initial market price
}

// ListCoinsHandler returns all tradable coins with current prices
func ListCoinsHandler(coins *service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := coins.List(c.Request.Context()) // Fetch all coins
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"coins": list}) // Return the list
	}
}

// AddCoinHandler registers a new coin type
func AddCoinHandler(coins *service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddCoinRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		coin, err := coins.Add(c.Request.Context(), req.Name, req.Symbol, req.PricePerUnit)
		if err != nil {
			writeError(c, err) // Conflict on duplicate name/symbol
			return
		}
		c.JSON(http.StatusCreated, coin) // Return the created coin
	}
}

// GetCoinHandler returns one coin by ID
func GetCoinHandler(coins *service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse the coin ID path parameter
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coin id"})
			return
		}
		coin, err := coins.Get(c.Request.Context(), uint(id)) // Fetch the coin
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, coin) // Return the coin
	}
}
