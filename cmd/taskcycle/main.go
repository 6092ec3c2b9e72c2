package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskcycle/internal/bot"
	"taskcycle/internal/config"
	"taskcycle/internal/repository"
	"taskcycle/internal/schedule"
	"taskcycle/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("timezone: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	clock := schedule.SystemClock{}
	materializer := service.NewMaterializer(taskRepo, clock)
	sweeps := service.NewSweepService(taskRepo, materializer, clock, cfg.AutoCloseAfter)

	scheduler, err := service.NewSchedulerService(sweeps, cfg.SweepTime, loc)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer scheduler.Stop()

	if cfg.TelegramToken == "" {
		log.Println("[info] no telegram token, running without admin bot")
		<-ctx.Done()
		log.Println("Shutdown complete.")
		return
	}

	adminBot, err := bot.New(cfg.TelegramToken, cfg.AdminChatID, scheduler, sweeps)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	log.Println("Task cycle daemon started.")
	if err := adminBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
