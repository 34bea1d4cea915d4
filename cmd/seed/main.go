// Command seed creates a pair of demo accounts for local development.
package main

import (
	"context"
	"log"

	"paygate/internal/config"
	"paygate/internal/models"
	"paygate/internal/repositories"

	"github.com/shopspring/decimal"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			sqlDB.Close()
		}
		if repositories.CacheService != nil {
			repositories.CacheService.Close()
		}
	}()

	var count int64
	if err := repositories.DB.Model(&models.Account{}).Count(&count).Error; err != nil {
		log.Fatal("Failed to count accounts:", err)
	}
	if count > 0 {
		log.Println("Accounts already exist, nothing to seed")
		return
	}

	repo := repositories.NewLedgerRepository(repositories.DB)
	ctx := context.Background()

	seeds := []models.Account{
		{Name: "Alice", Balance: decimal.NewFromInt(1000), Currency: "INR"},
		{Name: "Bob", Balance: decimal.NewFromInt(500), Currency: "INR"},
	}
	for i := range seeds {
		if err := repo.CreateAccount(ctx, &seeds[i]); err != nil {
			log.Fatal("Failed to seed account:", err)
		}
		log.Printf("Seeded account %d (%s, %s %s)", seeds[i].ID, seeds[i].Name, seeds[i].Balance, seeds[i].Currency)
	}
}
