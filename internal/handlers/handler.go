package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ad/go-asset-questionnaire/internal/db"
	"github.com/ad/go-asset-questionnaire/internal/flow"
	"github.com/ad/go-asset-questionnaire/internal/fsm"
	"github.com/ad/go-asset-questionnaire/internal/models"
	"github.com/ad/go-asset-questionnaire/internal/services"
	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

const (
	msgNoSession    = "There is no questionnaire in progress. Send /start to begin."
	msgSubmitted    = "This questionnaire is already submitted. Send /start to begin a new one."
	msgUnknownStep  = "That section does not exist."
	msgUseButtons   = "Use the buttons under the questionnaire, or send /start to begin again."
	msgLayoutUsage  = "Usage: /layout sidebar|wizard|dashboard"
	msgSessionReset = "Questionnaire discarded. Send /start to begin again."
)

type BotHandler struct {
	adminID       int64
	errorManager  *services.ErrorManager
	msgManager    *services.MessageManager
	sessions      *services.SessionManager
	renderer      *services.ScreenRenderer
	userRepo      *db.UserRepository
	chatStateRepo *db.ChatStateRepository
	settingsRepo  *db.SettingsRepository
	defaultLayout models.Layout
}

func NewBotHandler(
	adminID int64,
	errorManager *services.ErrorManager,
	msgManager *services.MessageManager,
	sessions *services.SessionManager,
	renderer *services.ScreenRenderer,
	userRepo *db.UserRepository,
	chatStateRepo *db.ChatStateRepository,
	settingsRepo *db.SettingsRepository,
	defaultLayout models.Layout,
) *BotHandler {
	return &BotHandler{
		adminID:       adminID,
		errorManager:  errorManager,
		msgManager:    msgManager,
		sessions:      sessions,
		renderer:      renderer,
		userRepo:      userRepo,
		chatStateRepo: chatStateRepo,
		settingsRepo:  settingsRepo,
		defaultLayout: defaultLayout,
	}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, _ *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(ctx, update)

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *BotHandler) recoverPanic(ctx context.Context, update *tgmodels.Update) {
	if r := recover(); r != nil {
		h.errorManager.NotifyAdmin(ctx, r, update)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgmodels.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start":
		h.handleStart(ctx, msg)
	case text == "/reset":
		h.handleReset(ctx, userID)
	case text == "/progress":
		h.handleProgress(ctx, userID)
	case userID == h.adminID && h.handleAdminCommand(ctx, userID, text):
	case text == "/layout" || strings.HasPrefix(text, "/layout "):
		h.handleLayoutCommand(ctx, userID, strings.TrimSpace(strings.TrimPrefix(text, "/layout")))
	case text != "":
		h.handleText(ctx, userID, text)
	}
}

func (h *BotHandler) handleStart(ctx context.Context, msg *tgmodels.Message) {
	userID := msg.From.ID
	user := &models.User{
		ID:        userID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Username:  msg.From.Username,
	}
	if err := h.userRepo.CreateOrUpdate(user); err != nil {
		log.Printf("[START] failed to save user %s: %v", user.DisplayName(), err)
	}

	h.sessions.Start(userID)

	welcome := "Welcome!"
	if settings, err := h.settingsRepo.GetAll(); err == nil && settings.WelcomeMessage != "" {
		welcome = settings.WelcomeMessage
	}
	h.sendText(ctx, userID, welcome)
	h.resetScreen(userID)
	h.refresh(ctx, userID)
}

func (h *BotHandler) handleReset(ctx context.Context, userID int64) {
	h.sessions.Drop(userID)
	h.resetScreen(userID)
	h.sendText(ctx, userID, msgSessionReset)
}

func (h *BotHandler) handleProgress(ctx context.Context, userID int64) {
	var text string
	err := h.sessions.With(userID, func(s *services.Session) error {
		step := s.Flow.CurrentStep()
		text = fmt.Sprintf("Progress: %s\nCurrent section: %d. %s\nStarted %s",
			s.Flow.Progress(), step.ID, step.Name, humanize.Time(s.StartedAt))
		if s.Flow.Submitted() {
			text += "\nStatus: submitted"
		}
		return nil
	})
	if errors.Is(err, services.ErrNoSession) {
		text = msgNoSession
	}
	h.sendText(ctx, userID, text)
}

func (h *BotHandler) handleLayoutCommand(ctx context.Context, userID int64, arg string) {
	layout, err := models.ParseLayout(arg)
	if err != nil {
		h.sendText(ctx, userID, msgLayoutUsage)
		return
	}
	if err := h.chatStateRepo.UpdateLayout(userID, layout); err != nil {
		log.Printf("[LAYOUT] failed to save layout for %d: %v", userID, err)
	}
	h.resetScreen(userID)
	if _, ok := h.sessions.Get(userID); ok {
		h.refresh(ctx, userID)
		return
	}
	h.sendText(ctx, userID, fmt.Sprintf("Layout set to %s. Send /start to begin.", layout.Title()))
}

// handleText accepts the details of a pending asset item; any other text
// just points back at the buttons.
func (h *BotHandler) handleText(ctx context.Context, userID int64, text string) {
	handled := false
	err := h.sessions.With(userID, func(s *services.Session) error {
		if s.State != fsm.StateAwaitingItem {
			return nil
		}
		handled = true
		item := services.ParseAssetInput(s.PendingCategory, text)
		stepID := s.PendingStepID
		s.ClearPending()
		if err := s.Flow.AddAsset(stepID, item); err != nil {
			return err
		}
		log.Printf("[SESSION] user=%d step=%d added %s (%.2f)", userID, stepID, item.Category, item.Value)
		return nil
	})

	switch {
	case errors.Is(err, services.ErrNoSession):
		h.sendText(ctx, userID, msgNoSession)
	case err != nil:
		log.Printf("[SESSION] user=%d failed to add item: %v", userID, err)
		h.sendText(ctx, userID, describeFlowError(err))
	case !handled:
		h.sendText(ctx, userID, msgUseButtons)
	default:
		h.resetScreen(userID)
		h.refresh(ctx, userID)
	}
}

func (h *BotHandler) handleCallback(ctx context.Context, callback *tgmodels.CallbackQuery) {
	userID := callback.From.ID

	action, err := services.ParseCallback(callback.Data)
	if err != nil {
		log.Printf("[CALLBACK] user=%d: %v", userID, err)
		h.msgManager.AnswerCallback(ctx, callback.ID, "")
		return
	}

	if action.Kind == services.ActionLayout {
		if err := h.chatStateRepo.UpdateLayout(userID, action.Layout); err != nil {
			log.Printf("[LAYOUT] failed to save layout for %d: %v", userID, err)
		}
		if _, ok := h.sessions.Get(userID); !ok {
			h.msgManager.AnswerCallback(ctx, callback.ID, fmt.Sprintf("Layout set to %s. Send /start to begin.", action.Layout.Title()))
			return
		}
		h.msgManager.AnswerCallback(ctx, callback.ID, "")
		h.refresh(ctx, userID)
		return
	}

	submittedNow := false
	err = h.sessions.With(userID, func(s *services.Session) error {
		wasSubmitted := s.Flow.Submitted()
		if err := h.apply(s, action); err != nil {
			return err
		}
		submittedNow = !wasSubmitted && s.Flow.Submitted()
		return nil
	})

	switch {
	case errors.Is(err, services.ErrNoSession):
		h.msgManager.AnswerCallback(ctx, callback.ID, msgNoSession)
		return
	case err != nil:
		log.Printf("[CALLBACK] user=%d action=%s: %v", userID, action.Encode(), err)
		h.msgManager.AnswerCallback(ctx, callback.ID, describeFlowError(err))
		return
	}

	h.msgManager.AnswerCallback(ctx, callback.ID, "")
	h.refresh(ctx, userID)

	if submittedNow {
		final := "Questionnaire completed!"
		if settings, err := h.settingsRepo.GetAll(); err == nil && settings.FinalMessage != "" {
			final = settings.FinalMessage
		}
		h.sendText(ctx, userID, final)
	}
}

// apply maps one button press onto the flow controller. Any navigation
// abandons a half-entered asset item.
func (h *BotHandler) apply(s *services.Session, action services.Action) error {
	c := s.Flow

	switch action.Kind {
	case services.ActionGoTo:
		if err := c.GoToStep(action.StepID); err != nil {
			return err
		}
		s.ClearPending()

	case services.ActionNext:
		status, err := c.Advance()
		if err != nil {
			return err
		}
		s.ClearPending()
		if status == flow.StatusSubmitted {
			s.State = fsm.StateSubmitted
			log.Printf("[SESSION] user=%d submitted session %s", s.UserID, s.ID)
		}

	case services.ActionPrev:
		if err := c.Retreat(); err != nil {
			return err
		}
		s.ClearPending()

	case services.ActionComplete:
		if err := c.MarkComplete(action.StepID); err != nil {
			return err
		}

	case services.ActionAssets:
		if err := c.SetHasAssets(action.StepID, action.HasAssets); err != nil {
			return err
		}

	case services.ActionItem:
		if c.Submitted() {
			return flow.ErrSubmitted
		}
		step, err := c.Step(action.StepID)
		if err != nil {
			return err
		}
		s.State = fsm.StateAwaitingItem
		s.PendingStepID = step.ID
		s.PendingCategory = step.Category(action.Category)

	case services.ActionCancel:
		s.ClearPending()
	}
	return nil
}

func (h *BotHandler) refresh(ctx context.Context, userID int64) {
	layout := h.layoutFor(userID)

	var screen services.Screen
	err := h.sessions.With(userID, func(s *services.Session) error {
		screen = h.renderer.Render(s, layout)
		return nil
	})
	if err != nil {
		return
	}

	if err := h.msgManager.ShowScreen(ctx, userID, screen); err != nil {
		log.Printf("[SCREEN] failed to show screen for %d: %v", userID, err)
	}
}

// layoutFor prefers the user's own choice, then the admin-set default,
// then the configured one.
func (h *BotHandler) layoutFor(userID int64) models.Layout {
	state, err := h.chatStateRepo.Get(userID)
	if err == nil && state.Layout != "" {
		if layout, err := models.ParseLayout(string(state.Layout)); err == nil {
			return layout
		}
	}
	if settings, err := h.settingsRepo.GetAll(); err == nil && settings.DefaultLayout != "" {
		return settings.DefaultLayout
	}
	return h.defaultLayout
}

// resetScreen detaches the screen message. A failure leaves the next
// refresh editing the old message.
func (h *BotHandler) resetScreen(userID int64) {
	if err := h.msgManager.ResetScreen(userID); err != nil {
		log.Printf("[SCREEN] failed to reset screen for %d: %v", userID, err)
	}
}

// sendText logs failed sends; the admin report is made by SendWithRetry.
func (h *BotHandler) sendText(ctx context.Context, userID int64, text string) {
	if err := h.msgManager.SendText(ctx, userID, text); err != nil {
		log.Printf("[MSG] failed to send text to %d: %v", userID, err)
	}
}

func describeFlowError(err error) string {
	switch {
	case errors.Is(err, flow.ErrSubmitted):
		return msgSubmitted
	case errors.Is(err, flow.ErrInvalidStepID):
		return msgUnknownStep
	default:
		return "Something went wrong, please try again."
	}
}
