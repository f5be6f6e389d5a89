package jobs

import (
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramJobLimit = 10

// TelegramHandler handles Telegram commands for the jobs feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the jobs feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes jobs-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	var text string
	switch command {
	case "jobs":
		text = h.jobsText()
	case "cancel":
		text = h.cancelText(strings.TrimSpace(args))
	default:
		text = "❌ Unknown jobs command. Use /jobs or /cancel <id>"
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := bot.Send(msg)
	return err
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"jobs":   "Show recent jobs",
		"cancel": "Cancel a job by ID",
	}
}

// HandleCallback handles callback queries for this feature (jobs has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

func (h *TelegramHandler) jobsText() string {
	jobs := h.service.GetJobs()
	if len(jobs) == 0 {
		return "📋 *No jobs yet*"
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if len(jobs) > telegramJobLimit {
		jobs = jobs[:telegramJobLimit]
	}

	var b strings.Builder
	b.WriteString("📋 *Recent Jobs*\n\n")
	for _, job := range jobs {
		snap := h.service.Snapshot(job)
		fmt.Fprintf(&b, "%s %s `%s`: %s (%d%%)\n", statusEmoji(snap.Status), snap.Name, shortID(snap.ID), snap.Message, snap.Progress)
	}
	return b.String()
}

func (h *TelegramHandler) cancelText(prefix string) string {
	if prefix == "" {
		return "Usage: /cancel <job id>"
	}
	var match *Job
	for _, job := range h.service.GetJobs() {
		if strings.HasPrefix(job.ID, prefix) {
			if match != nil {
				return "❌ More than one job matches, use a longer ID"
			}
			match = job
		}
	}
	if match == nil {
		return "❌ Job not found"
	}
	if err := h.service.CancelJob(match.ID); err != nil {
		return "❌ Failed to cancel: " + err.Error()
	}
	return fmt.Sprintf("🚫 Cancelled `%s`", shortID(match.ID))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// statusEmoji returns emoji for job status
func statusEmoji(status JobStatus) string {
	switch status {
	case JobStatusPending:
		return "⏳"
	case JobStatusRunning:
		return "🔄"
	case JobStatusCompleted:
		return "✅"
	case JobStatusFailed:
		return "❌"
	case JobStatusCancelled:
		return "🚫"
	default:
		return "❓"
	}
}
