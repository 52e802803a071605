package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yabzec/SnipHub/internal/email"
	"github.com/yabzec/SnipHub/internal/repository"
)

// Reaper purges unverified accounts older than the retention window. An
// external scheduler invokes Run once per tick (daily in production).
//
// The reaper may overlap live traffic without coordination: it only touches
// rows that are unverified and aged out, which no request path can use.
// Owned snippets/tags/folders go with the user via the cascade foreign keys.
type Reaper struct {
	users      repository.UserRepository
	mailer     email.Mailer
	adminEmail string
	retention  time.Duration
	logger     *slog.Logger
}

// NewReaper creates a Reaper. retention is how long an unverified account
// survives (24h in production).
func NewReaper(
	users repository.UserRepository,
	mailer email.Mailer,
	adminEmail string,
	retention time.Duration,
	logger *slog.Logger,
) *Reaper {
	return &Reaper{
		users:      users,
		mailer:     mailer,
		adminEmail: adminEmail,
		retention:  retention,
		logger:     logger,
	}
}

// Run executes one cleanup pass. On failure it alerts the operator address
// by mail; a failure of the alert itself is logged, not retried.
func (r *Reaper) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-r.retention)

	deleted, err := r.users.DeleteUnverifiedBefore(ctx, cutoff)
	if err != nil {
		r.logger.Error("cleanup job failed", slog.String("error", err.Error()))
		r.alert(ctx, err)
		return fmt.Errorf("reaper: %w", err)
	}

	if deleted > 0 {
		r.logger.Info("deleted inactive users", slog.Int64("count", deleted))
	}

	return nil
}

func (r *Reaper) alert(ctx context.Context, jobErr error) {
	if r.adminEmail == "" {
		r.logger.Warn("no admin email configured, skipping alert")
		return
	}

	body := email.AlertBody(jobErr)
	if err := r.mailer.Send(ctx, r.adminEmail, "SnipHub Error", body); err != nil {
		r.logger.Error("failed to send alert email", slog.String("error", err.Error()))
	}
}
