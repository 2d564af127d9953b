package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/recipe-cost/internal/model"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <ingredient>...",
	Short: "Show the retail package for each ingredient",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, cfg, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		results := make([]resolvedPackage, 0, len(args))
		for _, name := range args {
			results = append(results, resolvedPackage{
				Name:              name,
				PackageDescriptor: env.Resolver.Resolve(ctx, name),
			})
		}
		return writeResolved(cmd.OutOrStdout(), results, resolveJSON)
	},
}

type resolvedPackage struct {
	Name string `json:"name"`
	model.PackageDescriptor
}

func writeResolved(w io.Writer, results []resolvedPackage, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		line := fmt.Sprintf("%-24s %-10s %8.2f  %s", r.Name, r.Size, r.Price, r.Source)
		if r.Degraded {
			line += " (degraded)"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print JSON")
	rootCmd.AddCommand(resolveCmd)
}
