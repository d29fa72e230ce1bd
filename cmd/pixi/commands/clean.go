package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pixi/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the installed environments of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, _ := cmd.Flags().GetBool("cache")
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				ManifestPath: c.manifestPath,
				Cache:        cache,
			})
		},
	}

	cmd.Flags().Bool("cache", false, "Also remove the package and wheel caches")

	return cmd
}
