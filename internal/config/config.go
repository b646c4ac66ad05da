package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ad/go-asset-questionnaire/internal/models"
)

const DefaultDBPath = "questionnaire.db"

type Config struct {
	BotToken      string
	AdminID       int64
	DBPath        string
	DefaultLayout models.Layout
}

// Load reads configuration through getenv, normally os.Getenv after
// godotenv has populated the environment.
func Load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		BotToken:      strings.TrimSpace(getenv("BOT_TOKEN")),
		DBPath:        strings.TrimSpace(getenv("DB_PATH")),
		DefaultLayout: models.LayoutSidebar,
	}

	if cfg.BotToken == "" {
		return nil, errors.New("BOT_TOKEN environment variable is required")
	}

	if s := strings.TrimSpace(getenv("ADMIN_ID")); s != "" {
		adminID, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_ID: %w", err)
		}
		cfg.AdminID = adminID
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}

	if s := getenv("DEFAULT_LAYOUT"); s != "" {
		layout, err := models.ParseLayout(s)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_LAYOUT: %w", err)
		}
		cfg.DefaultLayout = layout
	}

	return cfg, nil
}

// DSN is the SQLite connection string used by the bot.
func (c *Config) DSN() string {
	return c.DBPath + "?_journal_mode=WAL&_busy_timeout=5000"
}
