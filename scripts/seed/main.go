//go:build ignore

// ===========================================================================
// Seed data for development/testing
// Run: go run scripts/seed/main.go
// ===========================================================================

package main

import (
	"fmt"
	"log"

	"github.com/contabhub/onety-sub018/internal/config"
	"github.com/contabhub/onety-sub018/internal/database"
	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/pkg/logger"
)

func main() {
	fmt.Println("🌱 Seeding data...")

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database, zapLog)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	fmt.Println("✅ Connected to database")

	// =========================================================================
	// 1. Company
	// =========================================================================
	company := &models.Company{
		Name:   "Demo Atendimento",
		Status: models.CompanyActive,
	}

	var existingCompany models.Company
	if err := db.Where("name = ?", company.Name).First(&existingCompany).Error; err == nil {
		fmt.Println("⚠️  Company already exists, reusing")
		company = &existingCompany
	} else {
		if err := db.Create(company).Error; err != nil {
			log.Fatalf("Failed to create company: %v", err)
		}
		fmt.Printf("✅ Company created: %s (ID: %s)\n", company.Name, company.ID)
	}

	// =========================================================================
	// 2. Instances (default support number + sales number)
	// =========================================================================
	instances := []*models.Instance{
		{
			CompanyID:  company.ID,
			Name:       "suporte",
			ExternalID: "demo-suporte",
			Token:      "demo-token-suporte",
			IsDefault:  true,
		},
		{
			CompanyID:  company.ID,
			Name:       "vendas",
			ExternalID: "demo-vendas",
			Token:      "demo-token-vendas",
		},
	}

	for _, instance := range instances {
		var existing models.Instance
		if err := db.Where("external_id = ?", instance.ExternalID).First(&existing).Error; err == nil {
			fmt.Printf("⚠️  Instance %q already exists, skipping\n", instance.Name)
			continue
		}
		if err := db.Create(instance).Error; err != nil {
			log.Fatalf("Failed to create instance: %v", err)
		}
		fmt.Printf("✅ Instance created: %s (external: %s)\n", instance.Name, instance.ExternalID)
	}

	// =========================================================================
	// 3. Webhook subscription
	// =========================================================================
	subscription := &models.WebhookSubscription{
		CompanyID: company.ID,
		URL:       "http://localhost:9000/hooks/messages",
		Secret:    "demo-webhook-secret",
		Status:    models.SubscriptionActive,
		Events:    models.EventTypes{"MESSAGE_RECEIVED"},
	}

	var existingSub models.WebhookSubscription
	if err := db.Where("company_id = ? AND url = ?", company.ID, subscription.URL).
		First(&existingSub).Error; err == nil {
		fmt.Println("⚠️  Subscription already exists, skipping")
	} else {
		if err := db.Create(subscription).Error; err != nil {
			log.Fatalf("Failed to create subscription: %v", err)
		}
		fmt.Printf("✅ Subscription created: %s\n", subscription.URL)
	}

	fmt.Println("🌱 Seed finished")
	fmt.Println()
	fmt.Println("Try an inbound message:")
	fmt.Printf("  curl -X POST http://localhost:%d/api/v1/webhook/zapi \\\n", cfg.App.Port)
	fmt.Println(`    -H 'Content-Type: application/json' \`)
	fmt.Println(`    -d '{"instanceId":"demo-suporte","messageId":"m1","phone":"5511999990000","senderName":"Maria","text":{"message":"olá"}}'`)
}
