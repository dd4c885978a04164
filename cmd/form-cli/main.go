package main

import (
	"AI-Content-Creator-Backend/internal/cli"
	"AI-Content-Creator-Backend/internal/client"
	"AI-Content-Creator-Backend/internal/config"
	"AI-Content-Creator-Backend/internal/form"
	"AI-Content-Creator-Backend/internal/logging"
	"AI-Content-Creator-Backend/internal/model"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	baseURL := pflag.String("base-url", cfg.Client.BaseURL, "content API base URL")
	userID := pflag.Int64("user-id", 0, "Telegram user id (required)")
	chatID := pflag.Int64("chat-id", 0, "Telegram chat id the document is delivered to (required)")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	if *userID == 0 || *chatID == 0 {
		fmt.Fprintln(os.Stderr, "--user-id and --chat-id are required")
		pflag.Usage()
		os.Exit(2)
	}

	if *verbose {
		if err := logging.InitLogger(false); err != nil {
			log.Fatalf("failed to init logger: %s", err)
		}
		defer logging.Sync()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := client.NewContentApiClient(*baseURL, cfg.Client.TimeoutSeconds)
	options, err := api.FetchOptions(ctx)
	if err != nil {
		logging.Logger.Warn("using built-in options", zap.Error(err))
		o := model.Options()
		options = &o
	}

	host := cli.NewTerminalHost(os.Stdout, optionalID(*userID), optionalID(*chatID))
	closeDelay := time.Duration(cfg.Client.CloseDelayMs) * time.Millisecond
	controller := form.NewController(api, host,
		form.WithSubmitTimeout(time.Duration(cfg.Client.TimeoutSeconds)*time.Second),
		form.WithCloseDelay(closeDelay),
		form.WithRenderer(cli.PrintFields(os.Stdout)),
	)

	res, err := cli.Run(ctx, controller, cli.SurveyPrompter{}, *options, os.Stdout)
	if errors.Is(err, cli.ErrAborted) {
		os.Exit(130)
	}
	if errors.Is(err, form.ErrInvalidIdentifier) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("form failed: %s", err)
	}

	switch res.Status {
	case form.OutcomeSuccess:
		select {
		case <-host.Done():
		case <-time.After(closeDelay + time.Second):
		}
	case form.OutcomeError:
		os.Exit(1)
	}
}

func optionalID(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
