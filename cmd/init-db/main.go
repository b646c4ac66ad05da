package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/ad/go-asset-questionnaire/internal/config"
	"github.com/ad/go-asset-questionnaire/internal/db"
	"github.com/ad/go-asset-questionnaire/internal/models"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

// init-db prepares the database ahead of the first bot start and applies
// WELCOME_MESSAGE, FINAL_MESSAGE and DEFAULT_LAYOUT when set.
func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = config.DefaultDBPath
	}

	database, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	log.Println("Initializing schema...")
	if err := db.InitSchema(database); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	queue := db.NewDBQueue(database)
	defer queue.Close()
	settingsRepo := db.NewSettingsRepository(queue)

	for env, key := range map[string]string{
		"WELCOME_MESSAGE": db.SettingWelcomeMessage,
		"FINAL_MESSAGE":   db.SettingFinalMessage,
	} {
		if value := os.Getenv(env); value != "" {
			if err := settingsRepo.Set(key, value); err != nil {
				log.Fatalf("Failed to set %s: %v", key, err)
			}
			log.Printf("Set %s", key)
		}
	}

	if value := os.Getenv("DEFAULT_LAYOUT"); value != "" {
		layout, err := models.ParseLayout(value)
		if err != nil {
			log.Fatalf("Invalid DEFAULT_LAYOUT: %v", err)
		}
		if err := settingsRepo.SetDefaultLayout(layout); err != nil {
			log.Fatalf("Failed to set default layout: %v", err)
		}
		log.Printf("Default layout: %s", layout)
	}

	log.Println("Database ready!")
}
