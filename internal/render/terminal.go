package render

import (
	"strconv"
	"strings"

	"geodigest/internal/core"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const maxTitleWidth = 60

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	scoreStyle  = cellStyle.Foreground(lipgloss.Color("10")).Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RankingTable renders selected candidates as a terminal table. With
// explain set, the score breakdown is added as a column.
func RankingTable(candidates []core.Candidate, explain bool) string {
	if len(candidates) == 0 {
		return "No candidates selected.\n"
	}

	headers := []string{"#", "Score", "Source", "Title", "Published"}
	if explain {
		headers = append(headers, "Breakdown")
	}

	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(c.Score),
			sourceLabel(c),
			clip(c.Title, maxTitleWidth),
			c.Published,
		}
		if explain {
			row = append(row, c.Explanation)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return scoreStyle
			default:
				return cellStyle
			}
		})

	return t.String() + "\n"
}

func sourceLabel(c core.Candidate) string {
	if c.SourceType != "" && c.SourceType != core.SourceUnknown {
		return c.SourceType.Label()
	}
	return clip(c.Source, 30)
}

// clip shortens s to at most n runes
func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
