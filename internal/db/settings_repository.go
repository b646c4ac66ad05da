package db

import (
	"database/sql"

	"github.com/ad/go-asset-questionnaire/internal/models"
)

const (
	SettingWelcomeMessage = "welcome_message"
	SettingFinalMessage   = "final_message"
	SettingDefaultLayout  = "default_layout"
)

type SettingsRepository struct {
	queue *DBQueue
}

func NewSettingsRepository(queue *DBQueue) *SettingsRepository {
	return &SettingsRepository{queue: queue}
}

func (r *SettingsRepository) Get(key string) (string, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var value string
		err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
		return value, err
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		return nil, err
	})
	return err
}

func (r *SettingsRepository) GetAll() (*models.Settings, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`SELECT key, value FROM settings`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		settings := &models.Settings{DefaultLayout: models.LayoutSidebar}
		for rows.Next() {
			var key, value string
			if err := rows.Scan(&key, &value); err != nil {
				return nil, err
			}
			switch key {
			case SettingWelcomeMessage:
				settings.WelcomeMessage = value
			case SettingFinalMessage:
				settings.FinalMessage = value
			case SettingDefaultLayout:
				if layout, err := models.ParseLayout(value); err == nil {
					settings.DefaultLayout = layout
				}
			}
		}
		return settings, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Settings), nil
}

func (r *SettingsRepository) SetDefaultLayout(layout models.Layout) error {
	return r.Set(SettingDefaultLayout, string(layout))
}
