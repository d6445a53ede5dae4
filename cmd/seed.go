/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedReset bool

// seedCmd populates the database with sample items.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with sample items",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer log.Sync()

		rt, err := openItemRuntime(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer rt.Close(log)

		items, err := rt.items.Seed(cmd.Context(), seedReset)
		if err != nil {
			return err
		}
		log.Info("seeded database", zap.Int("items", len(items)), zap.Bool("reset", seedReset))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&seedReset, "reset", true, "delete existing items before seeding")
}
