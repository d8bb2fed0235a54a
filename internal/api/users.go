package api

import (
	"coin_exchange/internal/service" // Service layer
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListUsersHandler returns all registered users
func ListUsersHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := users.List(c.Request.Context()) // Fetch all users
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": list}) // Return the list
	}
}

// GetUserDetailsHandler returns one user with wallet, last 10 transactions
// and last 10 trades
func GetUserDetailsHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse the user ID path parameter
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		details, err := users.Details(c.Request.Context(), uint(id)) // Fetch the detailed view
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, details) // Return the detailed view
	}
}
