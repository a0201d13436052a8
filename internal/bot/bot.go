package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reveille/internal/core"
)

// Sender is the part of *tgbotapi.BotAPI the bot uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Config holds the bot's routing settings
type Config struct {
	AllowedUsers []int64
	// ChatIDs receive ringing alerts and lifecycle events
	ChatIDs  []int64
	Location *time.Location
}

// Bot represents the Telegram bridge: command handler, event sink and alert surface
type Bot struct {
	api     Sender
	service core.AlarmService
	config  Config
	logger  *slog.Logger
}

// NewBotAPI connects to Telegram with token
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	return api, nil
}

// NewBot creates a new Telegram bot instance
func NewBot(api Sender, service core.AlarmService, cfg Config, logger *slog.Logger) *Bot {
	return &Bot{
		api:     api,
		service: service,
		config:  cfg,
		logger:  logger.With("component", "telegram"),
	}
}

// IsUserAllowed checks if a user ID is in the whitelist
func (b *Bot) IsUserAllowed(userID int64) bool {
	return slices.Contains(b.config.AllowedUsers, userID)
}

// HandleUpdate processes a Telegram update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	// Check authorization for all updates
	var userID int64
	switch {
	case update.Message != nil && update.Message.From != nil:
		userID = update.Message.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		userID = update.CallbackQuery.From.ID
	default:
		// Ignore updates without user info
		return nil
	}

	if !b.IsUserAllowed(userID) {
		b.logger.Warn("Unauthorized access attempt",
			"user_id", userID,
		)
		return b.sendUnauthorizedMessage(update)
	}

	// Route update to appropriate handler
	if update.Message != nil {
		return b.handleMessage(ctx, update.Message)
	}

	return b.handleCallback(ctx, update.CallbackQuery)
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	b.logger.Info("Received message",
		"user_id", message.From.ID,
		"username", message.From.UserName,
		"text", message.Text,
	)

	if !message.IsCommand() {
		// Ignore non-command messages
		return nil
	}

	chatID := message.Chat.ID
	switch message.Command() {
	case "start", "help":
		return b.handleStart(chatID)
	case "alarms":
		return b.handleAlarms(ctx, chatID)
	case "ack":
		return b.withAlarmID(chatID, message.CommandArguments(), func(id int) error {
			return b.handleAck(ctx, chatID, id)
		})
	case "snooze":
		return b.withAlarmID(chatID, message.CommandArguments(), func(id int) error {
			return b.handleSnooze(ctx, chatID, id)
		})
	case "stop":
		return b.handleStop(ctx, chatID)
	default:
		return b.sendMessage(chatID,
			"Unknown command. Use /help to see available commands.", nil)
	}
}

// handleCallback processes callback queries from inline buttons
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	b.logger.Info("Received callback",
		"user_id", callback.From.ID,
		"data", callback.Data,
	)

	// Answer callback to remove loading state
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := b.api.Request(answer); err != nil {
		b.logger.Error("Failed to answer callback", "error", err)
	}

	if callback.Message == nil || callback.Message.Chat == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID

	// Quick action buttons carry raw commands
	if strings.HasPrefix(callback.Data, "/") {
		msg := &tgbotapi.Message{
			Chat: callback.Message.Chat,
			From: callback.From,
			Text: callback.Data,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(strings.Fields(callback.Data)[0])},
			},
		}
		return b.handleMessage(ctx, msg)
	}

	data, err := UnmarshalCallback(callback.Data)
	if err != nil {
		b.logger.Error("Failed to unmarshal callback data",
			"raw_data", callback.Data,
			"error", err,
		)
		return b.sendMessage(chatID, FormatError(err), nil)
	}

	switch data.Action {
	case ActionAck:
		return b.handleAck(ctx, chatID, data.AlarmID)
	case ActionSnooze:
		return b.handleSnooze(ctx, chatID, data.AlarmID)
	case ActionStop:
		return b.handleStop(ctx, chatID)
	default:
		return b.sendMessage(chatID, "Unknown action.", nil)
	}
}

// withAlarmID parses the command argument as an alarm ID
func (b *Bot) withAlarmID(chatID int64, args string, fn func(int) error) error {
	id, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || id < 0 {
		return b.sendMessage(chatID, "Please pass a numeric alarm ID, e.g. `/ack 42`.", nil)
	}
	return fn(id)
}

// sendMessage sends a text message
func (b *Bot) sendMessage(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			"chat_id", chatID,
			"error", err,
		)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// broadcast sends text to every configured chat and reports the first failure
func (b *Bot) broadcast(text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	var firstErr error
	for _, chatID := range b.config.ChatIDs {
		if err := b.sendMessage(chatID, text, keyboard); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// sendUnauthorizedMessage sends an unauthorized access message
func (b *Bot) sendUnauthorizedMessage(update tgbotapi.Update) error {
	var chatID int64
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	default:
		return nil
	}

	return b.sendMessage(chatID,
		"⛔ You are not authorized to use this bot.", nil)
}
