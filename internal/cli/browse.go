package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/notehub/internal/app"
	"github.com/example/notehub/internal/core/listview"
	"github.com/example/notehub/internal/tui"
	"github.com/example/notehub/internal/wire"
)

// BrowseCmd returns the browse command
func BrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [tag]",
		Short: "Open the interactive notes browser",
		Long: `Open the full-screen browser. The optional argument selects the tag
filter, either as a bare tag or a route such as notes/filter/Work.
Unknown tags show all notes.

Keys:
  /          search (applies after typing pauses)
  tab        next tag filter
  ←/→        previous/next page
  enter      preview the selected note
  n / e / d  new, edit, delete
  q          quit

Examples:
  notehub browse
  notehub browse Work
  notehub browse notes/filter/Shopping`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route := ""
			if len(args) == 1 {
				route = args[0]
			}

			bridge := tui.NewBridge()
			wire.UseNotifier(bridge)

			cfg, err := wire.Config()
			if err != nil {
				return err
			}
			services, err := wire.App()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			session := app.NewNotesSession(ctx, services.Notes, services.Cache, app.SessionOptions{
				Tag:      listview.ParseTagSlug(route),
				PerPage:  cfg.UI.PageSize,
				Debounce: cfg.UI.Debounce,
				Logger:   wire.Logger().Named("session"),
				OnChange: bridge.OnChange,
			})
			defer session.Close()

			model := tui.NewModel(ctx, session, services.Notes, services.Form)
			return tui.Run(ctx, model, bridge)
		},
	}
}
