package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/notehub/internal/config"
	"github.com/example/notehub/internal/db"
	"github.com/example/notehub/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var (
		baseURL string
		token   string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the config file and create the draft store",
		Long: `Write ~/.notehub/config.yaml and create the local draft database.

Examples:
  notehub init --token $NOTEHUB_TOKEN
  notehub init --base-url http://localhost:8080/api --token dev --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s\nHint: use --force to overwrite", path)
			}

			cfg := config.Default()
			if baseURL != "" {
				cfg.API.BaseURL = baseURL
			}
			cfg.API.Token = token
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Config written to %s\n", path)

			conn, err := db.Open(cfg.Draft.Path, wire.Logger())
			if err != nil {
				return fmt.Errorf("failed to initialize draft store: %w", err)
			}
			if err := conn.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Draft store ready at %s\n", cfg.Draft.Path)

			if token == "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "No token set. Export NOTEHUB_TOKEN or edit the config file.")
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  notehub list")
			fmt.Fprintln(out, "  notehub browse")
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "note service base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token for the note service")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}
