package api

import (
	"coin_exchange/internal/service" // Service layer
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion
	"time"                           // Ticker for the push cadence

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/gorilla/websocket" // WebSocket upgrader
	"github.com/sirupsen/logrus"   // Logging library
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Token auth happens in middleware, not via origin
	},
}

// StreamPriceHandler upgrades the connection and pushes the coin's current
// price once per second until the client goes away
func StreamPriceHandler(feed *service.PriceFeed) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse the coin ID path parameter
		coinID, err := strconv.ParseUint(c.Param("coinId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coin id"})
			return
		}
		// Upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("WebSocket upgrade failed")
			return
		}
		defer conn.Close()

		ctx := c.Request.Context()

		// Push the current quote once per second
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return // Client went away
			case <-ticker.C:
				quote, err := feed.GetPrice(ctx, uint(coinID))
				if err != nil {
					// Report the miss and close the stream
					_ = conn.WriteJSON(gin.H{"error": err.Error()})
					return
				}
				// Send the quote to the client
				if err := conn.WriteJSON(quote); err != nil {
					return // Write error means the peer disconnected
				}
			}
		}
	}
}
