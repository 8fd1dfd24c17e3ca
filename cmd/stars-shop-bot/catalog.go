package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/stars-shop-bot/internal/catalog"
	"github.com/fairyhunter13/stars-shop-bot/internal/model"
)

func catalogCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print the item catalog (secrets are not shown)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := catalog.Load(path)
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), b.Catalog.Items())
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "catalog YAML file (default: built-in catalog)")
	return cmd
}

func printCatalog(w io.Writer, items []model.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d %s\n", it.ID, it.Name, it.Price, model.Currency)
	}
	return tw.Flush()
}
