package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/service"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var (
		flags         extractorFlags
		corpusDir     string
		caseSensitive bool
		top           int
	)
	cmd := &cobra.Command{
		Use:   "score <text|file>",
		Short: "Score a text or file against a directory of reference files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.newService(cmd, &flags, corpusDir)
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()
			if corpusDir == "" && cfg.Corpus.Dir == "" {
				return errors.New("no reference corpus: pass --corpus or set corpus.dir")
			}
			if err := svc.LoadCorpus(cmd.Context()); err != nil {
				return err
			}

			var cs *bool
			if cmd.Flags().Changed("case-sensitive") {
				cs = &caseSensitive
			}
			scored, err := svc.Similarity(cmd.Context(), flags.source(), args[0], nil, cs)
			if err := reportDiagnostic(cmd, err); err != nil {
				return err
			}
			result := scored.Result.Top(top)
			if flags.jsonOutput {
				return writeJSON(cmd, map[string]any{
					"input":  scored.Input.BoW,
					"result": result,
					"names":  documentNames(scored),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "References: %d\n", len(scored.Documents))
			if result.Len() == 0 {
				fmt.Fprintln(out, "Matches: none")
				return nil
			}
			rows := make([][]string, 0, result.Len())
			for rank, m := range result.Matches() {
				rows = append(rows, []string{
					strconv.Itoa(rank + 1),
					strconv.Itoa(m.Index),
					scored.Documents[m.Index].Name,
					strconv.Itoa(m.Score),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Rank", "Index", "Document", "Score"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&corpusDir, "corpus", "", "Directory of reference files (defaults to corpus.dir)")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Compare words without case folding")
	cmd.Flags().IntVar(&top, "top", 0, "Show at most this many matches (0 shows all)")
	return cmd
}

func documentNames(scored service.Scored) map[string]string {
	names := make(map[string]string, scored.Result.Len())
	for _, m := range scored.Result.Matches() {
		names[strconv.Itoa(m.Index)] = scored.Documents[m.Index].Name
	}
	return names
}
