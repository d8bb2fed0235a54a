package main

import (
	"coin_exchange/internal/config" // Custom import path (Config)
	"coin_exchange/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Run schema migration
}
