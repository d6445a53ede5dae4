/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/itemmanager/apiserver/internal/events"
	"github.com/itemmanager/apiserver/internal/mq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect item events",
}

// eventsTailCmd logs item events as they arrive until interrupted.
var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow item events on the configured message queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("MQ_BACKEND is not set")
		}
		defer func() { _ = queue.Close() }()

		log.Info("tailing item events", zap.String("channel", cfg.MQ.ItemChannel))
		err = events.Subscribe(ctx, queue, cfg.MQ.ItemChannel, func(_ context.Context, event events.ItemEvent) error {
			log.Info("item event",
				zap.String("type", string(event.Type)),
				zap.Int64("item_id", event.Item.ID),
				zap.String("name", event.Item.Name),
				zap.Float64("price", event.Item.Price),
				zap.Time("occurred_at", event.OccurredAt),
			)
			return nil
		}, func(msg mq.Message, err error) {
			log.Warn("dropped invalid item event", zap.String("message_id", msg.ID), zap.Error(err))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
