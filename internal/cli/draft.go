package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/notehub/internal/wire"
)

// DraftCmd returns the draft command
func DraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Manage the saved create-form draft",
		Long: `The draft holds an unfinished new note. It survives restarts and is
cleared only when a note is created from it or by "notehub draft clear".`,
	}

	cmd.AddCommand(draftShowCmd())
	cmd.AddCommand(draftSetCmd())
	cmd.AddCommand(draftClearCmd())

	return cmd
}

func draftShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.NoteAdapter()
			if err != nil {
				return err
			}
			return adapter.ShowDraft(commandContext(cmd))
		},
	}
}

func draftSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update draft fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := fieldChanges(cmd)
			if err != nil {
				return err
			}
			if changes.Empty() {
				return fmt.Errorf("nothing to save: give at least one of --title, --content, --tag")
			}
			adapter, err := wire.NoteAdapter()
			if err != nil {
				return err
			}
			return adapter.SetDraft(commandContext(cmd), changes)
		},
	}

	addFieldFlags(cmd)
	return cmd
}

func draftClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.NoteAdapter()
			if err != nil {
				return err
			}
			return adapter.ClearDraft(commandContext(cmd))
		},
	}
}
