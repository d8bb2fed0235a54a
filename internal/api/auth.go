package api

import (
	"coin_exchange/internal/service" // Service layer
	"coin_exchange/internal/utils"   // Utility functions
	"net/http"                       // HTTP status codes
	"net/mail"                       // Email address validation

	"github.com/gin-gonic/gin" // Gin web framework
)

// CreateUserRequest is the registration payload
type CreateUserRequest struct {
	FirstName string `json:"first_name" binding:"required"` // First name must be provided
	LastName  string `json:"last_name" binding:"required"`  // Last name must be provided
	Email     string `json:"email" binding:"required"`      // Email must be provided
	Password  string `json:"password" binding:"required"`   // Password must be provided
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the issued credential
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15 // Return true if length is valid
}

// CreateUserHandler registers a new user and creates their wallet
func CreateUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate the email shape before hitting the store
		if _, err := mail.ParseAddress(req.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-15 characters"})
			return
		}
		user, err := users.Create(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
		if err != nil {
			writeError(c, err) // Conflict on duplicate email
			return
		}
		// Return the created user together with their wallet
		c.JSON(http.StatusCreated, gin.H{"user": user, "wallet": user.Wallet})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users *service.UserService, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		userID, err := users.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeError(c, err) // Unauthorized on bad credentials
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(userID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
