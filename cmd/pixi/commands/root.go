// Package commands implements the CLI commands for pixi.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/pixi/internal/app"
	"go.trai.ch/pixi/internal/build"
	"go.trai.ch/pixi/internal/core/domain"
)

// CLI represents the command line interface for pixi.
type CLI struct {
	app     Application
	logs    LogControl
	rootCmd *cobra.Command

	manifestPath string
	locked       bool
	frozen       bool
	jsonLogs     bool
	verbose      bool
	metricsFile  string
}

// Application represents the application logic interface.
type Application interface {
	Lock(ctx context.Context, opts app.LockOptions) error
	Install(ctx context.Context, opts app.InstallOptions) error
	Status(ctx context.Context, manifestPath string) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// LogControl reconfigures logging from the global flags.
type LogControl interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// New creates a new CLI instance with the given app. logs may be nil.
func New(a Application, logs LogControl) *CLI {
	rootCmd := &cobra.Command{
		Use:           "pixi",
		Short:         "A package manager for conda and pypi environments",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logs:    logs,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.manifestPath, "manifest-path", "", "Path to pixi.toml or the directory containing it")
	flags.BoolVar(&c.locked, "locked", false, "Fail when the lock file is not up-to-date with the manifest")
	flags.BoolVar(&c.frozen, "frozen", false, "Use the lock file as-is without checking it")
	flags.BoolVar(&c.jsonLogs, "json-logs", false, "Write log records as JSON")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "Write step metrics in the Prometheus text format to this file")
	rootCmd.MarkFlagsMutuallyExclusive("locked", "frozen")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if c.logs == nil {
			return
		}
		c.logs.SetJSON(c.jsonLogs)
		c.logs.SetVerbose(c.verbose)
	}

	rootCmd.AddCommand(c.newLockCmd())
	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// lockOptions translates the global flags.
func (c *CLI) lockOptions() app.LockOptions {
	usage := domain.LockFileUpdate
	switch {
	case c.frozen:
		usage = domain.LockFileFrozen
	case c.locked:
		usage = domain.LockFileLocked
	}
	return app.LockOptions{
		ManifestPath: c.manifestPath,
		Usage:        usage,
		MetricsFile:  c.metricsFile,
	}
}
