/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/itemmanager/apiserver/config"
	"github.com/itemmanager/apiserver/internal/db"
	"github.com/itemmanager/apiserver/internal/events"
	"github.com/itemmanager/apiserver/internal/logging"
	"github.com/itemmanager/apiserver/internal/mq"
	"github.com/itemmanager/apiserver/internal/services"
	"github.com/itemmanager/apiserver/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "itemserver",
	Short:         "Item Manager API server and maintenance tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime reads configuration and builds the process logger.
func loadRuntime() (config.Config, *logging.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(logging.Config{Level: cfg.Log.Level, DevMode: cfg.Log.DevMode})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

// itemRuntime is the item service with the connections behind it, for
// commands that work on items outside the HTTP server.
type itemRuntime struct {
	items *services.ItemService
	db    *db.DB
	queue *mq.MQ
}

func openItemRuntime(ctx context.Context, cfg config.Config, log *logging.Logger) (*itemRuntime, error) {
	if cfg.Database.AutoMigrate {
		if err := db.MigrateUp(cfg.Database); err != nil {
			return nil, err
		}
	}
	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	queue, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var publisher services.EventPublisher
	if queue != nil {
		publisher = events.NewPublisher(queue, cfg.MQ.ItemChannel)
	}

	return &itemRuntime{
		items: services.NewItemService(store.NewItemRepository(dbConn), publisher, log),
		db:    dbConn,
		queue: queue,
	}, nil
}

func (rt *itemRuntime) Close(log *logging.Logger) {
	if rt.queue != nil {
		if err := rt.queue.Close(); err != nil {
			log.Warn("close message queue", zap.Error(err))
		}
	}
	if err := rt.db.Close(); err != nil {
		log.Warn("close database", zap.Error(err))
	}
}
