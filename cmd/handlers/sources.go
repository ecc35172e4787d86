package handlers

import (
	"fmt"

	"geodigest/internal/config"
	"geodigest/internal/core"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// NewSourcesCmd creates the sources command
func NewSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources [daily|weekly]",
		Short: "List the configured feed sources",
		Long: `List the feed sources of one digest variant, or of both when no
variant is given.

Examples:
  geodigest sources
  geodigest sources weekly`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: variantNames(),
		RunE:      sourcesRun,
	}
	return cmd
}

func sourcesRun(cmd *cobra.Command, args []string) error {
	variants := core.Variants
	if len(args) == 1 {
		v, err := core.ParseVariant(args[0])
		if err != nil {
			return err
		}
		variants = []core.Variant{v}
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, v := range variants {
		profile, err := cfg.Profile(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%d sources, cron %q)\n", profile.Title, len(profile.Sources), profile.Cron)
		fmt.Fprintln(out, sourcesTable(profile))
	}
	return nil
}

func sourcesTable(profile config.Profile) string {
	rows := make([][]string, 0, len(profile.Sources))
	for _, s := range profile.SourceList() {
		rows = append(rows, []string{s.DisplayName(), s.Type.Label(), s.URL})
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Name", "Type", "URL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}
