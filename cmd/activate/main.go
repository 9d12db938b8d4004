// Command activate marks registered accounts as active and verified.
//
//	activate -email j@x.com [-email other@x.com]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go-auth-portal/internal/app"
	"go-auth-portal/internal/config"
	"go-auth-portal/internal/logger"
	"go-auth-portal/internal/model"
	"go-auth-portal/internal/usecase"
)

type emailList []string

func (e *emailList) String() string {
	return strings.Join(*e, ",")
}

func (e *emailList) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("email cannot be empty")
	}
	*e = append(*e, v)
	return nil
}

func main() {
	var emails emailList
	flag.Var(&emails, "email", "email of the account to activate (repeatable)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	if len(emails) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stderr, cfg.Environment, cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, emails); err != nil {
		slog.Error("activation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, emails []string) error {
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	profiles := usecase.NewProfileUseCase(stores.Users)

	var failed int
	for _, email := range emails {
		user, err := profiles.ActivateUser(ctx, email)
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			slog.Warn("no account with that email", "email", email)
			failed++
		case err != nil:
			return fmt.Errorf("activate %s: %w", email, err)
		default:
			slog.Info("account activated", "user_id", user.ID, "email", user.Email, "username", user.Username)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d accounts not found", failed, len(emails))
	}
	return nil
}
