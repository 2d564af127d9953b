package main

import (
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"
)

var packagesJSON bool

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List every known package (built-in table and cache)",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		known := env.Resolver.KnownPackages()
		if packagesJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(known)
		}

		names := make([]string, 0, len(known))
		for name := range known {
			names = append(names, name)
		}
		sort.Strings(names)

		results := make([]resolvedPackage, 0, len(names))
		for _, name := range names {
			results = append(results, resolvedPackage{Name: name, PackageDescriptor: known[name]})
		}
		return writeResolved(cmd.OutOrStdout(), results, false)
	},
}

func init() {
	packagesCmd.Flags().BoolVar(&packagesJSON, "json", false, "print JSON")
	rootCmd.AddCommand(packagesCmd)
}
