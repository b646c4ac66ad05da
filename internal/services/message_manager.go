package services

import (
	"context"
	"log"
	"strings"

	"github.com/ad/go-asset-questionnaire/internal/db"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Sender is the subset of the Telegram client the bot uses. *bot.Bot
// satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*tgmodels.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// MessageManager keeps a single "screen" message per user and edits it in
// place as the questionnaire changes.
type MessageManager struct {
	sender        Sender
	chatStateRepo *db.ChatStateRepository
	errMgr        *ErrorManager
	maxRetry      int
}

func NewMessageManager(sender Sender, chatStateRepo *db.ChatStateRepository, errMgr *ErrorManager) *MessageManager {
	return &MessageManager{
		sender:        sender,
		chatStateRepo: chatStateRepo,
		errMgr:        errMgr,
		maxRetry:      2,
	}
}

func (m *MessageManager) SendWithRetry(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	var lastErr error
	for attempt := 0; attempt < m.maxRetry; attempt++ {
		msg, err := m.sender.SendMessage(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	chatID, _ := params.ChatID.(int64)
	m.errMgr.NotifyAdminWithRequest(ctx, chatID, params, lastErr)
	return nil, lastErr
}

func (m *MessageManager) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := m.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// ShowScreen edits the user's current screen message, or sends a new one
// when there is none or it can no longer be edited.
func (m *MessageManager) ShowScreen(ctx context.Context, userID int64, screen Screen) error {
	state, err := m.chatStateRepo.Get(userID)
	if err != nil {
		log.Printf("[SCREEN] failed to load chat state for %d: %v", userID, err)
	}

	if state != nil && state.ScreenMessageID != 0 {
		_, err := m.sender.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      userID,
			MessageID:   state.ScreenMessageID,
			Text:        screen.Text,
			ReplyMarkup: screen.Keyboard,
		})
		if err == nil || isNotModifiedError(err) {
			return nil
		}
		log.Printf("[SCREEN] edit of message %d for %d failed, resending: %v", state.ScreenMessageID, userID, err)
		_ = m.DeleteMessage(ctx, userID, state.ScreenMessageID)
	}

	msg, err := m.SendWithRetry(ctx, &bot.SendMessageParams{
		ChatID:      userID,
		Text:        screen.Text,
		ReplyMarkup: screen.Keyboard,
	})
	if err != nil {
		return err
	}
	return m.chatStateRepo.UpdateScreenMessageID(userID, msg.ID)
}

// ResetScreen detaches the current screen so the next ShowScreen sends a
// fresh message below whatever was said in between.
func (m *MessageManager) ResetScreen(userID int64) error {
	return m.chatStateRepo.ClearScreen(userID)
}

func (m *MessageManager) AnswerCallback(ctx context.Context, callbackID, text string) {
	_, err := m.sender.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       text != "",
	})
	if err != nil {
		log.Printf("[CALLBACK] answer %s failed: %v", callbackID, err)
	}
}

func (m *MessageManager) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := m.sender.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}

func isNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
