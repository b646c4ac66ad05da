package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const maxAdminMessageLen = 4000

// ErrorManager reports handler panics and delivery failures to the admin
// chat. With adminID 0 reports only go to the log.
type ErrorManager struct {
	sender  Sender
	adminID int64
}

func NewErrorManager(sender Sender, adminID int64) *ErrorManager {
	return &ErrorManager{
		sender:  sender,
		adminID: adminID,
	}
}

func (e *ErrorManager) NotifyAdmin(ctx context.Context, panicValue interface{}, update *models.Update) {
	userInfo := "unknown"
	if update != nil {
		if update.Message != nil && update.Message.From != nil {
			userInfo = describeUser(update.Message.From)
		} else if update.CallbackQuery != nil {
			userInfo = describeUser(&update.CallbackQuery.From)
		}
	}

	msg := fmt.Sprintf("🚨 Panic in handler\nUser: %s\nError: %v\n\nStack trace:\n%s",
		userInfo, panicValue, string(debug.Stack()))
	log.Printf("[ERROR] panic user=%s: %v", userInfo, panicValue)

	e.send(ctx, msg)
}

func (e *ErrorManager) NotifyAdminWithRequest(ctx context.Context, chatID int64, request interface{}, err error) {
	payload, marshalErr := json.MarshalIndent(request, "", "  ")
	if marshalErr != nil {
		payload = []byte(fmt.Sprintf("# failed to serialize request: %v", marshalErr))
	}

	msg := fmt.Sprintf("❌ Failed to deliver message\nUser: [%d]\nError: %v\n\nRequest:\n%s",
		chatID, err, string(payload))
	log.Printf("[ERROR] delivery to %d failed: %v", chatID, err)

	e.send(ctx, msg)
}

func (e *ErrorManager) send(ctx context.Context, msg string) {
	if e.adminID == 0 || e.sender == nil {
		return
	}
	if len(msg) > maxAdminMessageLen {
		msg = truncateBytes(msg, maxAdminMessageLen) + "\n... (truncated)"
	}
	_, _ = e.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: e.adminID,
		Text:   msg,
	})
}

func describeUser(u *models.User) string {
	info := fmt.Sprintf("[%d]", u.ID)
	if u.FirstName != "" {
		info = u.FirstName + " " + info
	}
	if u.Username != "" {
		info += " @" + u.Username
	}
	return info
}
