package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
)

func newBowCommand(ctx *commandContext) *cobra.Command {
	var flags extractorFlags
	cmd := &cobra.Command{
		Use:   "bow <text|file>",
		Short: "Print the bag of words of a text or file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.newService(cmd, &flags, "")
			if err != nil {
				return err
			}
			ex, err := svc.Extract(cmd.Context(), flags.source(), args[0], nil)
			if err := reportDiagnostic(cmd, err); err != nil {
				return err
			}
			if flags.jsonOutput {
				return writeJSON(cmd, map[string]any{
					"params": ex.Params,
					"bow":    ex.BoW,
				})
			}
			printBoW(cmd, ex.BoW)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func printBoW(cmd *cobra.Command, b *bow.BagOfWords) {
	out := cmd.OutOrStdout()
	if b.Len() == 0 {
		fmt.Fprintln(out, "Bag of words: empty")
		return
	}
	rows := make([][]string, 0, b.Len())
	for i, e := range b.Entries() {
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.Quote(e.Word), strconv.Itoa(e.Count)})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Word", "Count"}, rows, []columnAlignment{alignRight, alignLeft, alignRight}))
}
