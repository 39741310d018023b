package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/vntopic/pkg/vntopic/dataset"
)

var applyIn, applyOut string

func init() {
	applyCmd.Flags().StringVar(&applyIn, "in", "", "Input CSV or .jsonl (default dataset.input)")
	applyCmd.Flags().StringVar(&applyOut, "out", "", "Enriched CSV output (default dataset.output)")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Label new articles with a saved model",
	Long: `Load the last fitted run from the artifact store and assign topics to
the input without refitting.`,
	RunE: runApply,
}

func runApply(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	in, out := pick(applyIn, cfg.Dataset.Input), pick(applyOut, cfg.Dataset.Output)

	table, err := readInput(in)
	if err != nil {
		return err
	}
	p, err := loadPipeline(ctx)
	if err != nil {
		return err
	}
	res, err := p.Apply(ctx, table.Docs)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSVFile(out, table, res.Enrichments()); err != nil {
		return err
	}
	cmd.Printf("%d rows labeled (%d dropped) into %s, run %s\n", len(res.Rows), len(res.Dropped), out, p.Fitted().RunID)
	return nil
}
