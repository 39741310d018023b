package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/vntopic/pkg/vntopic"
	"github.com/cognicore/vntopic/pkg/vntopic/dataset"
)

var fitIn, fitOut string

func init() {
	fitCmd.Flags().StringVar(&fitIn, "in", "", "Input CSV or .jsonl (default dataset.input)")
	fitCmd.Flags().StringVar(&fitOut, "out", "", "Enriched CSV output (default dataset.output)")
	rootCmd.AddCommand(fitCmd)
}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the topic model and label the corpus",
	Long: `Normalize the corpus, select the vocabulary, fit the topic model and
write every kept row with clean_text, topic_id, topic_name and
topic_keywords. The fitted encoder, model and labels are saved to the
artifact store for later apply and report runs.`,
	RunE: runFit,
}

func runFit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	in, out := pick(fitIn, cfg.Dataset.Input), pick(fitOut, cfg.Dataset.Output)

	table, err := readInput(in)
	if err != nil {
		return err
	}
	p, err := vntopic.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	res, err := p.Fit(ctx, table.Docs)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSVFile(out, table, res.Enrichments()); err != nil {
		return err
	}

	st, err := openArtifacts(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := p.SaveArtifacts(ctx, st); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}

	for _, s := range res.Suggestions {
		logger.Info("stopword candidate", "token", s.Token, "df_percent", s.Reason.DFPercent)
	}
	cmd.Printf("%d rows labeled (%d dropped) into %s, run %s\n", len(res.Rows), len(res.Dropped), out, p.Fitted().RunID)
	for i, lb := range res.Labels {
		cmd.Printf("  topic %d  %-32s npmi %5.2f  %s\n", lb.Topic, lb.Name, res.Coherence[i].NPMI, lb.KeywordString())
	}
	return nil
}
