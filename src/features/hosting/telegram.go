package hosting

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/contre95/downsort/src/features/config"
	"github.com/contre95/downsort/src/features/jobs"
	"github.com/contre95/downsort/src/features/organizing"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramCommandHandler interface that each feature implements
type TelegramCommandHandler interface {
	HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error
	GetCommands() map[string]string                                             // Returns command -> description mapping
	HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool // Handle feature-specific callbacks
}

// TelegramBot handles Telegram bot operations
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	config   *config.Manager
	handlers map[string]TelegramCommandHandler
	commands map[string]string // command -> feature
	updates  tgbotapi.UpdatesChannel
	stopChan chan struct{}
}

// NewTelegramBot creates a new Telegram bot instance
func NewTelegramBot(cfg *config.Manager, organizingService *organizing.Service, jobService *jobs.Service) (*TelegramBot, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram bot is disabled in configuration")
	}

	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot initialized", "username", bot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	telegramBot := &TelegramBot{
		bot:      bot,
		config:   cfg,
		handlers: make(map[string]TelegramCommandHandler),
		commands: make(map[string]string),
		updates:  bot.GetUpdatesChan(updateConfig),
		stopChan: make(chan struct{}),
	}

	telegramBot.RegisterHandler("organizing", organizing.NewTelegramHandler(organizingService))
	telegramBot.RegisterHandler("jobs", jobs.NewTelegramHandler(jobService))

	return telegramBot, nil
}

// RegisterHandler registers a feature's command handler and the commands it
// answers.
func (t *TelegramBot) RegisterHandler(feature string, handler TelegramCommandHandler) {
	t.handlers[feature] = handler
	for command := range handler.GetCommands() {
		t.commands[command] = feature
	}
	slog.Debug("Registered Telegram handler", "feature", feature)
}

// Start begins listening for Telegram updates. It blocks until Stop is called.
func (t *TelegramBot) Start() {
	slog.Info("Starting Telegram bot listener")

	for {
		select {
		case update, ok := <-t.updates:
			if !ok {
				return
			}
			if update.Message != nil {
				go t.handleMessage(update.Message)
			}
			if update.CallbackQuery != nil {
				go t.handleCallbackQuery(update.CallbackQuery)
			}
		case <-t.stopChan:
			slog.Info("Stopping Telegram bot listener")
			return
		}
	}
}

// Stop gracefully stops the bot
func (t *TelegramBot) Stop() {
	t.bot.StopReceivingUpdates()
	close(t.stopChan)
}

// handleMessage processes incoming messages
func (t *TelegramBot) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	allowedUsers := t.config.Get().Telegram.AllowedUsers
	if len(allowedUsers) == 0 {
		slog.Warn("No allowed users configured", "chat_id", chatID)
		t.sendMessage(chatID, "❌ Access denied: No users configured. Please add users to the config.")
		return
	}
	if !isAllowed(allowedUsers, message.From) {
		slog.Warn("Unauthorized user", "username", displayName(message.From), "chat_id", chatID)
		t.sendMessage(chatID, "Unknown user, please add your user to the config")
		return
	}

	if !message.IsCommand() {
		t.sendMessage(chatID, "🤖 Send /help to see available commands")
		return
	}

	command := message.Command()
	args := message.CommandArguments()
	slog.Debug("Processing command", "command", command, "args", args, "chat_id", chatID)

	switch command {
	case "help", "start":
		t.sendMessage(chatID, t.helpText())
		return
	}
	if err := t.routeCommand(command, args, chatID); err != nil {
		slog.Error("Failed to handle command", "command", command, "error", err)
		t.sendMessage(chatID, "❌ Failed to process command")
	}
}

// routeCommand routes commands to the appropriate feature handler
func (t *TelegramBot) routeCommand(command, args string, chatID int64) error {
	feature, exists := t.commands[command]
	if !exists {
		t.sendMessage(chatID, "❌ Unknown command. Send /help to see available commands.")
		return nil
	}
	return t.handlers[feature].HandleCommand(t.bot, chatID, command, args)
}

func (t *TelegramBot) helpText() string {
	descriptions := make(map[string]string)
	for _, handler := range t.handlers {
		for command, description := range handler.GetCommands() {
			descriptions[command] = description
		}
	}
	return formatHelp(descriptions)
}

func formatHelp(descriptions map[string]string) string {
	commands := make([]string, 0, len(descriptions))
	for command := range descriptions {
		commands = append(commands, command)
	}
	sort.Strings(commands)

	var b strings.Builder
	b.WriteString("*🤖 downsort*\n\n")
	for _, command := range commands {
		fmt.Fprintf(&b, "/%s - %s\n", command, descriptions[command])
	}
	return b.String()
}

// handleCallbackQuery hands inline keyboard callbacks to the features
func (t *TelegramBot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	for _, handler := range t.handlers {
		if handler.HandleCallback(t.bot, callback) {
			break
		}
	}
	// Answer callback to remove loading state
	t.bot.Request(tgbotapi.NewCallback(callback.ID, ""))
}

// sendMessage sends a message to the specified chat
func (t *TelegramBot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Failed to send message", "error", err, "chat_id", chatID)
	}
}

// isAllowed matches the sender's username, or their full name when they have
// no username, against the allow list.
func isAllowed(allowedUsers []string, user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	return slices.Contains(allowedUsers, displayName(user))
}

func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	return name
}
