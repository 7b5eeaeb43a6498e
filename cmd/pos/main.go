package main

import (
	"context"
	"os"

	"github.com/comandahq/comanda/internal/menu"
	"github.com/comandahq/comanda/internal/reports"
	"github.com/comandahq/comanda/internal/sales"
	"github.com/comandahq/comanda/internal/shell"
	"github.com/comandahq/comanda/internal/storage"
	"github.com/comandahq/comanda/pkg/config"
	"github.com/comandahq/comanda/pkg/logger"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// catalogAdapter exposes the menu catalog through the narrow surface the
// ledger depends on.
type catalogAdapter struct {
	menu menu.Service
}

func (a catalogAdapter) Snapshot(index int) (sales.ItemSnapshot, bool) {
	item, ok := a.menu.ItemAt(index)
	if !ok {
		return sales.ItemSnapshot{}, false
	}
	return sales.ItemSnapshot{Name: item.Name, Category: item.Category, UnitPrice: item.UnitPrice}, true
}

func (a catalogAdapter) RecordOrdered(ctx context.Context, index, qty int) error {
	return a.menu.RecordOrdered(ctx, index, qty)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "pos"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"data_dir": cfg.Storage.DataDir,
	})
	ctx = logg.WithSessionID(ctx, uuid.NewString())

	menuStore := storage.NewMenuStore(cfg.Storage.MenuPath(), logg)
	salesStore := storage.NewSalesStore(cfg.Storage.SalesPath(), logg)

	menuSvc, err := menu.NewService(ctx, menuStore, logg)
	if err != nil {
		logg.Error(ctx, "failed to load menu catalog", err)
		os.Exit(1)
	}

	ledger, err := sales.NewLedger(ctx, salesStore, catalogAdapter{menu: menuSvc}, logg)
	if err != nil {
		logg.Error(ctx, "failed to load sales ledger", err)
		os.Exit(1)
	}

	reportsSvc, err := reports.NewService(ledger)
	if err != nil {
		logg.Error(ctx, "failed to create reports service", err)
		os.Exit(1)
	}

	sh, err := shell.New(os.Stdin, os.Stdout, menuSvc, ledger, reportsSvc, logg)
	if err != nil {
		logg.Error(ctx, "failed to create shell", err)
		os.Exit(1)
	}

	logg.Info(ctx, "starting point-of-sale shell")
	if err := sh.Run(ctx); err != nil {
		logg.Error(ctx, "shell stopped unexpectedly", err)
		os.Exit(1)
	}
}
