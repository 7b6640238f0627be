package main

import (
	"context"
	"log"

	"github.com/Ijanques/pysteis/internal/config"
	"github.com/Ijanques/pysteis/internal/database"
	"github.com/Ijanques/pysteis/internal/store"
)

// Drops the four store tables and re-runs initialization, restoring the seed
// catalog. Local development helper; destructive by design.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	tables := []string{"sale_items", "sales", "products", "categories"}
	for _, table := range tables {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			log.Fatalf("Drop table %s: %v", table, err)
		}
		log.Printf("Dropped table %s", table)
	}

	if err := store.New(db).Initialize(ctx); err != nil {
		log.Fatalf("Initialize store: %v", err)
	}

	log.Printf("Database reset and reseeded")
}
