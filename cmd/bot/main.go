// cmd/bot/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"transaction-aggregator/internal/bootstrap"
	"transaction-aggregator/internal/chat"
	"transaction-aggregator/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	bootstrap.SetupLogger(cfg.LogLevel)

	if cfg.TelegramToken == "" {
		slog.Error("TELEGRAM_BOT_TOKEN not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenSource(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open data source", "error", err)
		os.Exit(1)
	}
	responder := chat.NewBot(store)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		slog.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}
	slog.Info("Bot started", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			slog.Info("Bot stopped")
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			handleMessage(ctx, bot, responder, update.Message)
		}
	}
}

func handleMessage(ctx context.Context, bot *tgbotapi.BotAPI, responder *chat.Bot, m *tgbotapi.Message) {
	slog.Debug("📥 Received", "chat_id", m.Chat.ID, "text", m.Text)

	text, err := responder.Reply(ctx, m.Text)
	if err != nil {
		slog.Error("Failed to answer command", "chat_id", m.Chat.ID, "error", err)
		text = "❌ Error: " + chat.Escape(err.Error())
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, text)
	msg.ParseMode = "Markdown"
	if _, err := bot.Send(msg); err != nil {
		slog.Error("Failed to send reply", "chat_id", m.Chat.ID, "error", err)
	}
}
