package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/recipe-cost/internal/ingest"
	"github.com/sells-group/recipe-cost/internal/model"
	"github.com/sells-group/recipe-cost/internal/shopping"
)

var (
	shopFile  string
	shopItems []string
	shopJSON  bool
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Compute the shopping cost of a recipe",
	Long:  "Reads an ingredient list (--file as json, csv or xlsx, or repeated --item name=quantity) and prints each package bought, the share the recipe uses, and the leftover value.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ingredients, err := collectIngredients(shopFile, shopItems)
		if err != nil {
			return err
		}
		if err := shopping.Validate(ingredients); err != nil {
			return err
		}

		env, err := initEnv(ctx, cfg, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		summary := env.Aggregator.Calculate(ctx, ingredients)
		if shopJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}
		printSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

// collectIngredients merges the file list with --item flags, file first.
func collectIngredients(file string, items []string) ([]model.Ingredient, error) {
	var out []model.Ingredient
	if file != "" {
		list, err := ingest.ReadIngredients(file)
		if err != nil {
			return nil, err
		}
		out = append(out, list...)
	}
	for _, item := range items {
		ing, err := parseItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}

// parseItem parses "name=quantity".
func parseItem(s string) (model.Ingredient, error) {
	name, qty, ok := strings.Cut(s, "=")
	if !ok {
		return model.Ingredient{}, eris.Errorf("item %q must be name=quantity", s)
	}
	return model.Ingredient{Name: strings.TrimSpace(name), Quantity: strings.TrimSpace(qty)}, nil
}

func printSummary(w io.Writer, s model.ShoppingSummary) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%-24s %-10s %-10s %9s %6s %9s  %s\n", "INGREDIENT", "QUANTITY", "PACKAGE", "PRICE", "USED", "COST", "SOURCE")
	for _, l := range s.Ingredients {
		src := string(l.Source)
		if l.Degraded {
			src += " (degraded)"
		}
		p.Fprintf(w, "%-24s %-10s %-10s %9.2f %5.0f%% %9.2f  %s\n",
			l.Name, l.Quantity, l.PackageSize, l.PackagePrice, l.PercentUsed*100, l.CostInRecipe, src)
	}
	p.Fprintf(w, "\nShopping total: $%.2f\n", s.TotalPackagePrice)
	p.Fprintf(w, "Recipe cost:    $%.2f\n", s.TotalRecipeCost)
	p.Fprintf(w, "Leftover value: $%.2f\n", s.LeftoverValue)
}

func init() {
	shopCmd.Flags().StringVar(&shopFile, "file", "", "ingredient list (.json, .csv or .xlsx)")
	shopCmd.Flags().StringArrayVar(&shopItems, "item", nil, "ingredient as name=quantity (repeatable)")
	shopCmd.Flags().BoolVar(&shopJSON, "json", false, "print JSON")
	rootCmd.AddCommand(shopCmd)
}
