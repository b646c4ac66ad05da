package db

import (
	"database/sql"
	"errors"

	"github.com/ad/go-asset-questionnaire/internal/models"
)

type ChatStateRepository struct {
	queue *DBQueue
}

func NewChatStateRepository(queue *DBQueue) *ChatStateRepository {
	return &ChatStateRepository{queue: queue}
}

// Get returns the stored chat state, or an empty state for unknown users.
func (r *ChatStateRepository) Get(userID int64) (*models.ChatState, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT user_id, screen_message_id, layout
			FROM user_chat_state WHERE user_id = ?
		`, userID)

		var state models.ChatState
		var layout string
		err := row.Scan(&state.UserID, &state.ScreenMessageID, &layout)
		if err != nil {
			return nil, err
		}
		state.Layout = models.Layout(layout)
		return &state, nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return &models.ChatState{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return result.(*models.ChatState), nil
}

func (r *ChatStateRepository) UpdateScreenMessageID(userID int64, messageID int) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO user_chat_state (user_id, screen_message_id)
			VALUES (?, ?)
			ON CONFLICT(user_id) DO UPDATE SET screen_message_id = excluded.screen_message_id
		`, userID, messageID)
		return nil, err
	})
	return err
}

func (r *ChatStateRepository) UpdateLayout(userID int64, layout models.Layout) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO user_chat_state (user_id, layout)
			VALUES (?, ?)
			ON CONFLICT(user_id) DO UPDATE SET layout = excluded.layout
		`, userID, string(layout))
		return nil, err
	})
	return err
}

// ClearScreen forgets the screen message but keeps the layout preference.
func (r *ChatStateRepository) ClearScreen(userID int64) error {
	return r.UpdateScreenMessageID(userID, 0)
}
