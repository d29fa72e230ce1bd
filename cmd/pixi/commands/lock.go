package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

var errFrozenLock = zerr.New("the lock command cannot be combined with --frozen")

func (c *CLI) newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Update the lock file to match the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.frozen {
				return errFrozenLock
			}
			opts := c.lockOptions()
			opts.NoInstall, _ = cmd.Flags().GetBool("no-install")
			return c.app.Lock(cmd.Context(), opts)
		},
	}

	cmd.Flags().Bool("no-install", false, "Do not install build environments while solving")

	return cmd
}
