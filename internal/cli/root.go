package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/notehub/internal/ctxutil"
	"github.com/example/notehub/internal/version"
	"github.com/example/notehub/internal/wire"
)

// NewRootCmd returns the notehub command tree.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:     "notehub",
		Short:   "NoteHub - browse and edit your notes from the terminal",
		Version: version.String(),
		Long: `notehub lists, searches, creates and edits notes stored in a NoteHub
service. Run "notehub browse" for the interactive browser.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.Configure(wire.Options{
				ConfigPath: configPath,
				Verbose:    verbose,
				Out:        cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
			})
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return wire.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.notehub/config.yaml, or $NOTEHUB_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "mirror debug logs to stderr")

	rootCmd.AddCommand(InitCmd())
	rootCmd.AddCommand(ListCmd())
	rootCmd.AddCommand(ShowCmd())
	rootCmd.AddCommand(CreateCmd())
	rootCmd.AddCommand(EditCmd())
	rootCmd.AddCommand(DeleteCmd())
	rootCmd.AddCommand(DraftCmd())
	rootCmd.AddCommand(BrowseCmd())
	rootCmd.AddCommand(MockServerCmd())
	rootCmd.AddCommand(VersionCmd())

	return rootCmd
}

// commandContext tags the command's context with its path for request logs.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctxutil.WithCommand(ctx, cmd.CommandPath())
}

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
