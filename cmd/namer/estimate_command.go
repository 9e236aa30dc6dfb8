package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/easayliu/smart-rename/internal/application/services/pipeline"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "estimate <paths...>",
		Short: "Dry run: show groups, prompt modes and token estimates without calling the provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.newOfflineContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			p, err := c.GetPipeline()
			if err != nil {
				return err
			}
			scanner, err := c.GetScanner()
			if err != nil {
				return err
			}
			paths, err := expandPaths(cmd.Context(), scanner, args, recursive)
			if err != nil {
				return err
			}

			reader := c.GetDescriptorReader()
			files := make([]naming.FileDescriptor, 0, len(paths))
			for _, path := range paths {
				desc, err := reader.Read(path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skip %s: %v\n", path, err)
					continue
				}
				files = append(files, desc)
			}

			est := p.Estimate(cmd.Context(), files)
			if wantsJSON(cmd, ctx) {
				return writeJSON(cmd, est)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEstimate(est))
			fmt.Fprintf(cmd.OutOrStdout(), "strategy %s: %d files, %d by metadata, %d-%d prompt tokens, worst case %s\n",
				p.Strategy().Name, est.Files, est.MetadataOnly, est.BestCaseTokens, est.WorstCaseTokens, formatCost(est.WorstCaseCost))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	return cmd
}

func renderEstimate(est pipeline.BatchEstimate) string {
	var rows [][]string
	for _, g := range est.Groups {
		rows = append(rows, estimateRow(g.GroupID, "representative", g.Representative))
		for _, s := range g.Siblings {
			rows = append(rows, estimateRow("", "sibling", s))
		}
		if g.BatchPatternTokens > 0 {
			rows = append(rows, []string{"", "pattern " + g.Pattern, "", "", string(naming.PromptBatchPattern), "", strconv.Itoa(g.BatchPatternTokens)})
		}
	}
	return renderTable(
		[]string{"Group", "File", "Metadata", "Confidence", "Mode", "Cheap", "Premium"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight},
	)
}

func estimateRow(group, role string, f pipeline.FileEstimate) []string {
	metadata := "no"
	if f.MetadataSufficient {
		metadata = "yes: " + f.MetadataName
	}
	return []string{
		shortID(group),
		filepath.Base(f.Path) + " (" + role + ")",
		metadata,
		strconv.FormatFloat(f.MetadataConfidence, 'f', 2, 64),
		string(f.RecommendedMode),
		strconv.Itoa(f.CheapTokens),
		strconv.Itoa(f.PremiumTokens),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
