package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var clearPrices bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the durable caches",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached package resolution",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		env.Resolver.ClearCache()
		cleared := "package cache"
		if clearPrices {
			env.PriceCache.Clear()
			cleared += " and price cache"
		}
		zap.L().Info("cache cleared", zap.Bool("prices", clearPrices))
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", cleared)
		return err
	},
}

func init() {
	cacheClearCmd.Flags().BoolVar(&clearPrices, "prices", false, "also clear the price cache")
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
