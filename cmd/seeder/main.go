// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/targetly/crm-backend/internal/config"
	"github.com/targetly/crm-backend/internal/db"
	"github.com/targetly/crm-backend/internal/model"
	"github.com/targetly/crm-backend/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	path := "seed/customers.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", path, err)
	}

	var customers []model.Customer
	if err := json.Unmarshal(data, &customers); err != nil {
		log.Fatalf("failed to parse %s: %v", path, err)
	}

	database, err := db.Connect(context.Background(), cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}

	repo := repository.NewCustomerRepository(database)
	count, err := repo.InsertMany(context.Background(), customers)
	if err != nil {
		log.Fatalf("failed to insert customers: %v", err)
	}

	fmt.Printf("Seeded %d customers from %s\n", count, path)
}
