package organizing

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the organizing feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the organizing feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes organizing commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	var text string
	switch command {
	case "status":
		text = h.statusText()
	case "scan":
		jobID, err := h.service.StartScan()
		if err != nil {
			text = "❌ Failed to start sort: " + err.Error()
		} else {
			text = fmt.Sprintf("🧹 Sorting started\n\nJob: `%s`", jobID)
		}
	case "history":
		limit := 10
		if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil && n > 0 && n <= 100 {
			limit = n
		}
		text = h.historyText(limit)
	case "categories":
		text = h.categoriesText()
	default:
		text = "❌ Unknown command. Use /status, /scan, /history or /categories"
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := bot.Send(msg)
	return err
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"status":     "Show organizer status",
		"scan":       "Sort the watched folder now",
		"history":    "Show recent moves",
		"categories": "Show the category table",
	}
}

// HandleCallback handles callback queries for this feature (none)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

func (h *TelegramHandler) statusText() string {
	status := h.service.Status(context.Background())
	var b strings.Builder
	b.WriteString("📂 *Organizer*\n\n")
	fmt.Fprintf(&b, "Root: `%s`\n", status.Root)
	if status.Watching {
		b.WriteString("Watching: ✅\n")
	} else {
		b.WriteString("Watching: ⏸\n")
	}
	fmt.Fprintf(&b, "Up since: %s\n", status.StartedAt.Format(time.DateTime))
	if status.LastScan != nil {
		fmt.Fprintf(&b, "Last sort: %d moved, %d skipped, %d failed\n", status.LastScan.Moved, status.LastScan.Skipped, status.LastScan.Failed)
	}
	fmt.Fprintf(&b, "Waiting for review: %d\n", status.PendingReview)

	if len(status.MovedByCategory) > 0 {
		names := make([]string, 0, len(status.MovedByCategory))
		for name := range status.MovedByCategory {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n*Moved so far*\n")
		for _, name := range names {
			fmt.Fprintf(&b, "• %s: %d\n", name, status.MovedByCategory[name])
		}
	}
	return b.String()
}

func (h *TelegramHandler) historyText(limit int) string {
	records, err := h.service.History(context.Background(), limit)
	if err != nil {
		return "❌ Failed to load history"
	}
	if len(records) == 0 {
		return "📭 *No moves recorded*"
	}
	var b strings.Builder
	b.WriteString("🕘 *Recent moves*\n\n")
	for _, r := range records {
		fmt.Fprintf(&b, "`%s` → %s (%s)\n", filepath.Base(r.Source), r.Category, r.MovedAt.Format("01-02 15:04"))
	}
	return b.String()
}

func (h *TelegramHandler) categoriesText() string {
	var b strings.Builder
	b.WriteString("🗂 *Categories*\n\n")
	for _, c := range h.service.Categories() {
		if c.Fallback {
			fmt.Fprintf(&b, "*%s*: everything else\n", c.Name)
			continue
		}
		fmt.Fprintf(&b, "*%s*: %s\n", c.Name, strings.Join(c.Extensions, " "))
	}
	return b.String()
}
