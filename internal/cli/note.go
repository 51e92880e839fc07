package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/notehub/internal/adapters/cli"
	"github.com/example/notehub/internal/core/listview"
	"github.com/example/notehub/internal/core/note"
	"github.com/example/notehub/internal/wire"
)

// ListCmd returns the list command
func ListCmd() *cobra.Command {
	var (
		tag     string
		search  string
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Long: `List one page of notes, optionally filtered by tag and search text.

Examples:
  notehub list
  notehub list --tag Work --page 2
  notehub list --search milk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := note.ParseFilter(tag)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("per-page") {
				cfg, err := wire.Config()
				if err != nil {
					return err
				}
				perPage = cfg.UI.PageSize
			}

			view := listview.New(filter, perPage)
			view = listview.ApplySearch(view, search)
			view = listview.SetPage(view, page)

			adapter, err := wire.NoteAdapter()
			if err != nil {
				return err
			}
			if err := adapter.List(commandContext(cmd), view); err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag (Todo, Work, Personal, Meeting, Shopping, all)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "search text")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", listview.DefaultPerPage, "notes per page")

	return cmd
}

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [note-id]",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.NoteAdapter()
			if err != nil {
				return err
			}
			if _, err := adapter.Show(commandContext(cmd), args[0]); err != nil {
				return fmt.Errorf("failed to show note: %w", err)
			}
			return nil
		},
	}
}

// CreateCmd returns the create command
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note from the saved draft",
		Long: `Create a note. The form starts from the saved draft; flags overwrite
draft fields and are saved to the draft before submitting. The draft is
cleared only after the note is created.

Examples:
  notehub create --title "Buy milk" --tag Shopping
  notehub draft set --title "Long idea" && notehub create`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := fieldChanges(cmd)
			if err != nil {
				return err
			}
			adapter, err := wire.NoteAdapter()
			if err != nil {
				return err
			}
			if _, err := adapter.Create(commandContext(cmd), changes); err != nil {
				return fmt.Errorf("failed to create note: %w", err)
			}
			return nil
		},
	}

	addFieldFlags(cmd)
	return cmd
}

// EditCmd returns the edit command
func EditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [note-id]",
		Short: "Edit a note",
		Long: `Edit a note. Only the given fields change.

Examples:
  notehub edit 65ca67e7ae7f10c88b598384 --tag Work
  notehub edit 65ca67e7ae7f10c88b598384 --title "New title" --content ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := fieldChanges(cmd)
			if err != nil {
				return err
			}
			adapter, err := wire.NoteAdapter()
			if err != nil {
				return err
			}
			if _, err := adapter.Edit(commandContext(cmd), args[0], changes); err != nil {
				return fmt.Errorf("failed to edit note: %w", err)
			}
			return nil
		},
	}

	addFieldFlags(cmd)
	return cmd
}

// DeleteCmd returns the delete command
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [note-id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.NoteAdapter()
			if err != nil {
				return err
			}
			if err := adapter.Delete(commandContext(cmd), args[0]); err != nil {
				return fmt.Errorf("failed to delete note: %w", err)
			}
			return nil
		},
	}
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("title", "t", "", "note title (3-50 characters)")
	cmd.Flags().StringP("content", "c", "", "note content (up to 500 characters)")
	cmd.Flags().String("tag", "", "note tag (Todo, Work, Personal, Meeting, Shopping)")
}

// fieldChanges collects the field flags that were given.
func fieldChanges(cmd *cobra.Command) (cliadapter.FieldChanges, error) {
	var changes cliadapter.FieldChanges
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		changes.Title = &v
	}
	if cmd.Flags().Changed("content") {
		v, _ := cmd.Flags().GetString("content")
		changes.Content = &v
	}
	if cmd.Flags().Changed("tag") {
		v, _ := cmd.Flags().GetString("tag")
		tag, err := note.ParseTag(v)
		if err != nil {
			return changes, err
		}
		changes.Tag = &tag
	}
	return changes, nil
}
