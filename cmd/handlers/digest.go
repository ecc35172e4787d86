package handlers

import (
	"errors"
	"fmt"
	"time"

	"geodigest/internal/core"
	"geodigest/internal/pipeline"
	"geodigest/internal/render"

	"github.com/spf13/cobra"
)

// errNotSent is returned when a non-dry run could not deliver its email
var errNotSent = errors.New("digest was not sent")

// NewDigestCmd creates the digest command
func NewDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest [daily|weekly]",
		Short: "Run one digest and email it",
		Long: `Run one digest end to end:
1. Read every configured feed
2. Filter, extract and score entries
3. Select the top articles
4. Render the HTML digest
5. Email it (skipped with --dry-run)

Examples:
  geodigest digest daily
  geodigest digest weekly --dry-run --explain
  geodigest digest daily --output digests`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: variantNames(),
		RunE:      digestRun,
	}

	cmd.Flags().Bool("dry-run", false, "Render and show the ranking without sending email")
	cmd.Flags().StringP("output", "o", "", "Directory for the HTML artifact (overrides output.directory)")
	cmd.Flags().Bool("explain", false, "Show the score breakdown in the ranking table")

	return cmd
}

func digestRun(cmd *cobra.Command, args []string) error {
	variant, err := parseVariantArg(args, core.VariantDaily)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	outputDir, _ := cmd.Flags().GetString("output")
	explain, _ := cmd.Flags().GetBool("explain")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	runner, err := pipeline.NewBuilder(cfg).WithLogger(log).Build()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	startTime := time.Now()
	report, err := runner.Run(cmd.Context(), pipeline.Options{
		Variant:   variant,
		DryRun:    dryRun,
		OutputDir: outputDir,
	})
	if err != nil {
		return fmt.Errorf("digest generation failed: %w", err)
	}

	printReport(cmd, report, dryRun, explain)
	fmt.Fprintf(cmd.OutOrStdout(), "⏱️  Completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if dryRun {
		return nil
	}
	if !report.Sent {
		return fmt.Errorf("%w: %w", errNotSent, report.SendErr)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Digest sent with %d articles\n", len(report.Selected))
	return nil
}

func printReport(cmd *cobra.Command, report *pipeline.Report, dryRun, explain bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "═══════════════════════════════════════")
	fmt.Fprintf(out, "📰 %s digest: %d candidates from %d feeds (%d failed)\n",
		report.Variant, report.Candidates, len(report.Feeds), report.FailedFeeds())
	fmt.Fprintln(out, "═══════════════════════════════════════")

	for _, f := range report.Feeds {
		if f.Err != nil {
			fmt.Fprintf(out, "   ⚠️  %s: %v\n", f.Source.DisplayName(), f.Err)
		}
	}

	if dryRun {
		fmt.Fprint(out, render.RankingTable(report.Selected, explain))
	}
	if report.ArtifactPath != "" {
		fmt.Fprintf(out, "📄 Output: %s\n", report.ArtifactPath)
	}
	if report.ArtifactErr != nil {
		fmt.Fprintf(out, "⚠️  Failed to write output: %v\n", report.ArtifactErr)
	}
}
