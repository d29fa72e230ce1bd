package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pixi/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install environments, updating the lock file if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envs, _ := cmd.Flags().GetStringSlice("environment")
			return c.app.Install(cmd.Context(), app.InstallOptions{
				LockOptions:  c.lockOptions(),
				Environments: envs,
			})
		},
	}

	cmd.Flags().StringSliceP("environment", "e", nil, "Environment to install (repeatable, defaults to \"default\")")

	return cmd
}
