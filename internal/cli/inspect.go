package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/goalnet/pkg/layout"
)

// inspectCommand creates the inspect command for browsing a layout.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect <layout.json>",
		Short: "Browse a layout in the terminal",
		Long: `Browse a layout in the terminal.

Shows every goal with its type, role, position, importance and descendant
count, plus the relationships of the selected goal. Pinned goals are dimmed.
Use --plain to print the table once without the interactive view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := layout.ReadResultFile(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}

			m := NewNodeTableModel(res)
			if plain {
				fmt.Fprintln(cmd.OutOrStdout(), nodeTable(m.Nodes, -1).Render())
				return nil
			}

			p := tea.NewProgram(m, tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the table without the interactive view")
	return cmd
}
