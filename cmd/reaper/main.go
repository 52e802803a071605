// Command reaper runs one cleanup pass over stale unverified accounts.
//
// It is intended to be invoked by an external scheduler (cron, systemd
// timer) once a day. The process exits non-zero when the pass fails, after
// the operator alert has been attempted.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/yabzec/SnipHub/internal/config"
	"github.com/yabzec/SnipHub/internal/email"
	sqliteRepo "github.com/yabzec/SnipHub/internal/repository/sqlite"
	"github.com/yabzec/SnipHub/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	mailer, err := email.NewSMTPMailer(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.NoReplyEmail,
	})
	if err != nil {
		logger.Error("failed to create mailer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reaper := service.NewReaper(db, mailer, cfg.AdminEmail, cfg.ReaperRetention, logger)

	if err := reaper.Run(context.Background()); err != nil {
		// Run already logged the failure and sent the alert.
		os.Exit(1)
	}
}
