package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dockfix/dockfix/internal/config"
	"github.com/dockfix/dockfix/internal/tui"
)

// patternRow is the JSON shape for a single pattern listing.
type patternRow struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
}

// AddPatternsCommand adds the patterns command to the root command.
func AddPatternsCommand(root *cobra.Command, global *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the error pattern table in priority order",
		Long: `Patterns prints the error pattern table the repair loop classifies
against, in match priority order. Disabled categories and user pattern files
from configuration are applied before listing, so the output reflects the
table an actual run would use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPatterns(cmd, global)
		},
	}

	root.AddCommand(cmd)
}

// runPatterns lists the assembled pattern table.
func runPatterns(cmd *cobra.Command, global *GlobalFlags) error {
	tui.CheckNoColor()
	out := tui.NewOutput(cmd.OutOrStdout(), global.Output)

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}

	table, err := buildPatternTable(cfg)
	if err != nil {
		return err
	}

	if global.Output == OutputJSON {
		rows := make([]patternRow, 0, table.Len())
		for _, p := range table.Patterns() {
			rows = append(rows, patternRow{
				ID:         p.ID,
				Category:   string(p.Category),
				Confidence: string(p.Confidence),
			})
		}
		return out.JSON(rows)
	}

	for i, p := range table.Patterns() {
		out.Info(fmt.Sprintf("%2d. %-24s %-12s %s", i+1, p.ID, p.Category, p.Confidence))
	}
	return nil
}
