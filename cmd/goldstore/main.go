// Package main запускает headless-клиент витрины голдстор.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mmeshcher/goldstore/internal/api"
	"github.com/mmeshcher/goldstore/internal/config"
	"github.com/mmeshcher/goldstore/internal/credential"
	"github.com/mmeshcher/goldstore/internal/gateway"
	"github.com/mmeshcher/goldstore/internal/session"
)

// consoleUI замещает пользовательский интерфейс при запуске из консоли.
type consoleUI struct {
	sugar *zap.SugaredLogger
}

func (c *consoleUI) Notify(message string) {
	c.sugar.Infow("notice", "message", message)
}

func (c *consoleUI) NavigateToLogin() {
	c.sugar.Infow("navigation", "target", "login")
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	creds := credential.NewStore(cfg.TokenFile)
	ui := &consoleUI{sugar: sugar}

	gw := gateway.New(cfg.BaseURL, cfg.RequestTimeout, creds, ui, ui, sugar)
	client := api.NewClient(gw)
	sess := session.NewSession(client, creds, ui, ui, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sugar.Infow("starting goldstore client", "baseURL", cfg.BaseURL)

	sess.Bootstrap(ctx)

	_, authenticated := creds.Get()
	sugar.Infow("session ready",
		"authenticated", authenticated,
		"products", len(sess.Products()),
		"cartItems", sess.TotalItems(),
		"cartTotal", sess.TotalPrice(),
		"orders", len(sess.Orders()),
	)
}
