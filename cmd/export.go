/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"

	"github.com/itemmanager/apiserver/internal/services"
	"github.com/itemmanager/apiserver/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportKey string

// exportCmd writes a JSON snapshot of all items to object storage.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all items to object storage",
	Long: `Writes a JSON snapshot of every item to the bucket configured by
STORAGE_BACKEND. The object key defaults to exports/items-<unix time>.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer log.Sync()

		objects, err := storage.Open(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		if objects == nil {
			return errors.New("STORAGE_BACKEND is not set")
		}

		rt, err := openItemRuntime(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer rt.Close(log)

		key, snapshot, err := services.NewExportService(rt.items, objects).Export(cmd.Context(), exportKey)
		if err != nil {
			return err
		}
		log.Info("exported items",
			zap.String("bucket", objects.Bucket()),
			zap.String("key", key),
			zap.Int("items", snapshot.Count),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportKey, "key", "", "object key for the snapshot")
}
