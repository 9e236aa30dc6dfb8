package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/application/services/pipeline"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

type suggestOutput struct {
	Results []*naming.Result      `json:"results"`
	Stats   contracts.NamingStats `json:"stats"`
}

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "suggest <paths...>",
		Short: "Suggest names for files (directories are expanded)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runSuggest(cmd.Context(), ctx, args, recursive)
			if err != nil {
				return err
			}
			if wantsJSON(cmd, ctx) {
				return writeJSON(cmd, out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderResults(out.Results))
			fmt.Fprintln(cmd.OutOrStdout(), formatStatsLine(out.Stats))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "stats <paths...>",
		Short: "Run the pipeline and print only the aggregate statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runSuggest(cmd.Context(), ctx, args, recursive)
			if err != nil {
				return err
			}
			if wantsJSON(cmd, ctx) {
				return writeJSON(cmd, out.Stats)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(out.Stats))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	return cmd
}

func runSuggest(parent context.Context, ctx *commandContext, args []string, recursive bool) (*suggestOutput, error) {
	c, err := ctx.newContainer()
	if err != nil {
		return nil, err
	}
	defer c.Shutdown()

	svc, err := c.GetNamingService()
	if err != nil {
		return nil, err
	}
	scanner, err := c.GetScanner()
	if err != nil {
		return nil, err
	}
	paths, err := expandPaths(parent, scanner, args, recursive)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files found in %v", args)
	}

	runCtx := pipeline.WithSource(parent, "cli")
	results := pipeline.ProcessPaths(runCtx, svc, c.GetDescriptorReader(), paths)
	return &suggestOutput{Results: results, Stats: svc.GetStats(results)}, nil
}

func renderResults(results []*naming.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		suggested := r.SuggestedFileName()
		if r.Error != "" {
			suggested = "error: " + r.Error
		}
		rows = append(rows, []string{
			filepath.Base(r.OriginalPath),
			suggested,
			string(r.Stage),
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			strconv.Itoa(r.TokensUsed),
			formatCost(r.Cost),
		})
	}
	return renderTable(
		[]string{"File", "Suggested", "Stage", "Confidence", "Tokens", "Cost"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func renderStats(stats contracts.NamingStats) string {
	rows := [][]string{
		{"total", strconv.Itoa(stats.Total)},
		{"succeeded", strconv.Itoa(stats.Succeeded)},
		{"failed", strconv.Itoa(stats.Failed)},
	}
	for _, stage := range []naming.Stage{naming.StageMetadata, naming.StageCheap, naming.StagePremium, naming.StagePattern} {
		rows = append(rows, []string{"stage " + string(stage), strconv.Itoa(stats.ByStage[stage])})
	}
	rows = append(rows,
		[]string{"tokens", strconv.Itoa(stats.TotalTokens)},
		[]string{"cost", formatCost(stats.TotalCost)},
		[]string{"mean confidence", strconv.FormatFloat(stats.MeanConfidence, 'f', 3, 64)},
	)
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func formatStatsLine(stats contracts.NamingStats) string {
	return fmt.Sprintf("%d files, %d succeeded, %d failed, %d tokens, %s",
		stats.Total, stats.Succeeded, stats.Failed, stats.TotalTokens, formatCost(stats.TotalCost))
}

func formatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', 4, 64)
}
