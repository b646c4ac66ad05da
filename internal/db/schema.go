package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    first_name TEXT,
    last_name TEXT,
    username TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_chat_state (
    user_id INTEGER PRIMARY KEY REFERENCES users(id),
    screen_message_id INTEGER NOT NULL DEFAULT 0,
    layout TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const defaultSettings = `
INSERT OR IGNORE INTO settings (key, value) VALUES 
    ('welcome_message', 'Welcome! This questionnaire walks you through the seven sections of your asset disclosure.'),
    ('final_message', 'Questionnaire completed! Thank you.'),
    ('default_layout', 'sidebar');
`

func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	_, err := db.Exec(defaultSettings)
	return err
}
