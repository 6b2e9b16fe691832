package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendboard/internal/cards"
	"github.com/cleared-dev/spendboard/internal/store"
)

func newCardsCommand(g *globalOptions) *cobra.Command {
	cardsCmd := &cobra.Command{
		Use:   "cards",
		Short: "Card operations",
	}
	cardsCmd.AddCommand(newCardsImportCommand(g))
	return cardsCmd
}

func newCardsImportCommand(g *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Replace the document's cards with those in a card-list CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ctx, _, err := g.setup(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening card list: %w", err)
			}
			defer f.Close()

			list, err := cards.ParseCSV(ctx, f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			st := documentStore(cfg, output)
			doc, err := st.Load(ctx)
			if err != nil {
				return err
			}
			if err := doc.Set(store.KeyCards, list); err != nil {
				return err
			}
			if err := st.Save(ctx, doc); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Imported %d cards into %s\n", len(list), st.Path())
			if len(list) > 0 {
				preview, _ := json.MarshalIndent(list[0], "", "  ")
				fmt.Fprintf(w, "\nPreview of first record:\n%s\n", preview)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "document to update (overrides output.path)")

	return cmd
}
