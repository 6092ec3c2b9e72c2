package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskcycle/internal/service"
)

// Bot is the operational surface: a Telegram bot that lets the configured
// admin chat inspect and drive the scheduler.
type Bot struct {
	api         *tgbotapi.BotAPI
	scheduler   *service.SchedulerService
	sweeps      *service.SweepService
	adminChatID int64
}

func New(token string, adminChatID int64, scheduler *service.SchedulerService, sweeps *service.SweepService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:         api,
		scheduler:   scheduler,
		sweeps:      sweeps,
		adminChatID: adminChatID,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	if msg.Chat.ID != b.adminChatID {
		log.Printf("[warn] ignoring command from chat %d", msg.Chat.ID)
		return
	}

	switch msg.Command() {
	case "status":
		recurring, autoClose := b.sweeps.LastResults()
		b.reply(formatStatus(b.scheduler.Status(), recurring, autoClose))
	case "start":
		if err := b.scheduler.Start(); err != nil {
			b.reply(fmt.Sprintf("start failed: %v", err))
			return
		}
		b.reply("scheduler started")
	case "stop":
		b.scheduler.Stop()
		b.reply("scheduler stopped")
	case "trigger":
		b.handleTrigger(ctx)
	case "help":
		b.reply(helpText)
	default:
		b.reply("unknown command, try /help")
	}
}

func (b *Bot) handleTrigger(ctx context.Context) {
	recurring, autoClose, err := b.scheduler.TriggerNow(ctx)
	if err != nil {
		b.reply(fmt.Sprintf("sweep failed: %v", err))
		return
	}
	b.reply(fmt.Sprintf("recurring: %s\nauto-close: %s", recurring, autoClose))
}

func (b *Bot) reply(text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(b.adminChatID, text)); err != nil {
		log.Printf("[error] send message: %v", err)
	}
}

const helpText = `Commands:
/status — scheduler state and last sweep results
/start — start the daily scheduler
/stop — stop the daily scheduler
/trigger — run both sweeps now`

func formatStatus(status service.SchedulerStatus, recurring, autoClose *service.SweepResult) string {
	var sb strings.Builder
	if status.Running {
		sb.WriteString("scheduler: running\n")
	} else {
		sb.WriteString("scheduler: stopped\n")
	}
	sb.WriteString(fmt.Sprintf("cron: %s (%s)\n", status.CronExpression, status.Timezone))
	sb.WriteString(fmt.Sprintf("next run: %s\n", status.NextRun))

	sb.WriteString("last recurring sweep: ")
	if recurring == nil {
		sb.WriteString("never\n")
	} else {
		sb.WriteString(recurring.String() + "\n")
	}
	sb.WriteString("last auto-close sweep: ")
	if autoClose == nil {
		sb.WriteString("never")
	} else {
		sb.WriteString(autoClose.String())
	}
	return sb.String()
}
