// Package db opens and migrates the persistent store.
package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pricesadapters "metals_backend/internal/feature/prices/adapters"
	tickerentity "metals_backend/internal/feature/tickers/domain/entity"
)

// OpenDB opens the persistent store. The default is the embedded SQLite
// database under METALS_DB_PATH; DB_DRIVER=postgres selects a networked
// Postgres instance instead.
func OpenDB() *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(dialector(), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") != "false" {
		if err := db.AutoMigrate(
			&tickerentity.Ticker{},
			&tickerentity.CustomInstrument{},
			&pricesadapters.PriceModel{},
			&pricesadapters.SettlementModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}

func dialector() gorm.Dialector {
	if os.Getenv("DB_DRIVER") == "postgres" {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			os.Getenv("DB_HOST"), os.Getenv("DB_PORT"),
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))
		return gpostgres.Open(dsn)
	}

	path := os.Getenv("METALS_DB_PATH")
	if path == "" {
		path = "./data/metals.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return sqlite.Open(path)
}
