package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/vntopic/internal/report"
	"github.com/cognicore/vntopic/pkg/vntopic/topic"
)

var (
	reportIn    string
	reportHTML  string
	reportTitle string
	reportWords int
	reportNoMap bool
)

func init() {
	reportCmd.Flags().StringVar(&reportIn, "in", "", "Input CSV or .jsonl (default dataset.input)")
	reportCmd.Flags().StringVar(&reportHTML, "html", "report.html", "HTML output")
	reportCmd.Flags().StringVar(&reportTitle, "title", "Topic report", "Page title")
	reportCmd.Flags().IntVar(&reportWords, "words", 100, "Word cloud size")
	reportCmd.Flags().BoolVar(&reportNoMap, "no-map", false, "Skip the t-SNE document map")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render an HTML report for a labeled corpus",
	Long: `Assign topics to the input with the saved model and render topic
shares, keyword bars, the daily timeline, a word cloud of the largest topic
and a 2D map of the documents into one HTML file.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	table, err := readInput(pick(reportIn, cfg.Dataset.Input))
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

	summary := report.Summarize(res.Rows, res.Labels, reportWords)
	var points []report.Point
	if !reportNoMap {
		docTopic := res.DocTopic()
		titles := make([]string, len(res.Rows))
		for i, r := range res.Rows {
			titles[i] = r.Document.Title.OrElse("")
		}
		points, err = report.Project(docTopic, topic.Assign(docTopic), titles, report.DefaultProjectOptions())
		if err != nil {
			return err
		}
	}

	f, err := os.Create(reportHTML)
	if err != nil {
		return fmt.Errorf("create %s: %w", reportHTML, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	if err := report.RenderHTML(w, summary, points, reportTitle); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	logger.Info("report written", "path", reportHTML, "rows", summary.Total, "undated", summary.Undated)
	cmd.Printf("report written to %s\n", reportHTML)
	return nil
}
