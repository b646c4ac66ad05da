package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ad/go-asset-questionnaire/internal/models"
)

// handleAdminCommand serves the admin-only commands and reports whether
// text was one of them.
func (h *BotHandler) handleAdminCommand(ctx context.Context, userID int64, text string) bool {
	switch {
	case text == "/stats":
		users, err := h.userRepo.Count()
		if err != nil {
			log.Printf("[ADMIN] failed to count users: %v", err)
		}
		h.sendText(ctx, userID, fmt.Sprintf("👥 Registered users: %d\n📝 Active questionnaires: %d", users, h.sessions.Count()))
		return true

	case strings.HasPrefix(text, "/default_layout"):
		arg := strings.TrimSpace(strings.TrimPrefix(text, "/default_layout"))
		layout, err := models.ParseLayout(arg)
		if err != nil {
			h.sendText(ctx, userID, "Usage: /default_layout sidebar|wizard|dashboard")
			return true
		}
		if err := h.settingsRepo.SetDefaultLayout(layout); err != nil {
			log.Printf("[ADMIN] failed to set default layout: %v", err)
			h.sendText(ctx, userID, "Failed to save the default layout.")
			return true
		}
		h.sendText(ctx, userID, "Default layout set to "+layout.Title()+".")
		return true
	}
	return false
}
