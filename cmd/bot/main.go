package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/go-asset-questionnaire/internal/config"
	"github.com/ad/go-asset-questionnaire/internal/db"
	"github.com/ad/go-asset-questionnaire/internal/flow"
	"github.com/ad/go-asset-questionnaire/internal/handlers"
	"github.com/ad/go-asset-questionnaire/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}

	registry, err := flow.DefaultRegistry()
	if err != nil {
		log.Fatalf("Failed to load questionnaire catalog: %v", err)
	}

	sqlDB, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.InitSchema(sqlDB); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	dbQueue := db.NewDBQueue(sqlDB)
	defer dbQueue.Close()

	userRepo := db.NewUserRepository(dbQueue)
	chatStateRepo := db.NewChatStateRepository(dbQueue)
	settingsRepo := db.NewSettingsRepository(dbQueue)

	if os.Getenv("DEFAULT_LAYOUT") != "" {
		if err := settingsRepo.SetDefaultLayout(cfg.DefaultLayout); err != nil {
			log.Printf("Failed to store default layout: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	b, err := bot.New(cfg.BotToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := connect(ctx, b); err != nil {
		log.Fatalf("Failed to get bot info after 3 attempts: %v", err)
	}

	errorManager := services.NewErrorManager(b, cfg.AdminID)
	msgManager := services.NewMessageManager(b, chatStateRepo, errorManager)
	sessions := services.NewSessionManager(registry)

	handler := handlers.NewBotHandler(
		cfg.AdminID,
		errorManager,
		msgManager,
		sessions,
		services.NewScreenRenderer(),
		userRepo,
		chatStateRepo,
		settingsRepo,
		cfg.DefaultLayout,
	)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, logMiddleware)

	log.Printf("Bot started. Admin ID: %d, DB: %s, layout: %s", cfg.AdminID, cfg.DBPath, cfg.DefaultLayout)

	b.Start(ctx)
}

func connect(ctx context.Context, b *bot.Bot) error {
	var err error
	for i := 0; i < 3; i++ {
		log.Printf("Attempting to connect to Telegram API (attempt %d/3)...", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(ctx, 10*time.Second)
		var me *tgmodels.User
		me, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			log.Printf("Connected to Telegram API as @%s", me.Username)
			return nil
		}
		log.Printf("Failed to get bot info (attempt %d/3): %v", i+1, err)
		if i < 2 {
			time.Sleep(2 * time.Second)
		}
	}
	return err
}

func formatUser(u tgmodels.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " @" + u.Username
	}
	return fmt.Sprintf("%s [%d]", name, u.ID)
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil && update.Message.From != nil {
			log.Printf("[MSG] from=%s text=%q", formatUser(*update.Message.From), update.Message.Text)
		}
		if update.CallbackQuery != nil {
			log.Printf("[CALLBACK] from=%s data=%q", formatUser(update.CallbackQuery.From), update.CallbackQuery.Data)
		}
		next(ctx, b, update)
	}
}
