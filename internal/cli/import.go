package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/goalnet/pkg/network"
)

// importCommand creates the import command for seeding the store.
func (c *CLI) importCommand() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "import <graph.json>",
		Short: "Replace a user's stored network with a network file",
		Long: `Replace a user's stored network with a network file.

Every goal and relationship of the user is replaced. Goals keep the ids of
the file, so later 'layout --save' runs and 'PUT /network/{id}/position'
requests address them directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user is required")
			}
			ctx := cmd.Context()

			g, err := network.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load network %s: %w", args[0], err)
			}
			if r := network.Validate(g); len(r.Dangling) > 0 {
				printWarning("%d edges reference goals outside the network", len(r.Dangling))
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.PutNetwork(ctx, userID, g); err != nil {
				return fmt.Errorf("import: %w", err)
			}

			printSuccess("Imported network for user %d", userID)
			printKeyValue("Store", c.Config.Store.Backend)
			printStats(g.NodeCount(), g.EdgeCount(), false)
			printNewline()
			printNextStep("Lay out", fmt.Sprintf("%s layout --user %d", appName, userID))
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "owner of the imported goals")
	return cmd
}
