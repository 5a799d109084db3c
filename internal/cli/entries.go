package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faizmokh/bridgelog/internal/logbook"
)

func newAddCommand(ctx context.Context, a *app) *cobra.Command {
	var flags entryFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an observation at the current position.",
		Long:  "add prepends an entry to the running log, stamped with the live date and the current time. The position comes from `bridgelog position`.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				next, err := s.ctrl.Apply("add entry", func(st logbook.State) (logbook.State, error) {
					return logbook.AddEntry(st, flags.fields, a.now())
				})
				if err != nil {
					return report(cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s\n", formatEntry(next.Log[0]))
				return nil
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newMoveCommand(ctx context.Context, a *app) *cobra.Command {
	kinds := make([]string, 0, len(logbook.Movements))
	for _, m := range logbook.Movements {
		kinds = append(kinds, strings.ReplaceAll(strings.ToLower(string(m)), " ", "-"))
	}

	cmd := &cobra.Command{
		Use:       "move <kind>",
		Short:     "Log a movement: " + strings.Join(kinds, ", ") + ".",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := logbook.ParseMovement(strings.Join(args, " "))
			if err != nil {
				return report(cmd, err)
			}
			return a.with(ctx, cmd, func(s *session) error {
				next, err := s.ctrl.Apply("movement", func(st logbook.State) (logbook.State, error) {
					return logbook.AddMovement(st, kind, a.now())
				})
				if err != nil {
					return report(cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (mode %s)\n", formatEntry(next.Log[0]), next.Daily.Mode)
				return nil
			})
		},
	}

	return cmd
}

func newNoteCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note <text ...>",
		Short: "Add a note to the live day.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return a.with(ctx, cmd, func(s *session) error {
				next, err := s.ctrl.Apply("note", func(st logbook.State) (logbook.State, error) {
					return logbook.AddNote(st, text, a.now())
				})
				if err != nil {
					return report(cmd, err)
				}
				n := next.Notes[0]
				fmt.Fprintf(cmd.OutOrStdout(), "Noted %s %s\n", n.Time, n.Text)
				return nil
			})
		},
	}

	return cmd
}

func newEditCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		keys  keyFlags
		flags entryFlags
		at    string
		pos   string
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Modify an entry in the live log or an archived day.",
		Long:  "edit changes the fields given as flags and keeps the rest. With --day the entry is looked up in that archived day and fuel summaries are recomputed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				key, err := keys.key(args, s.ctrl.State().Daily.Date)
				if err != nil {
					return err
				}

				var updated logbook.Entry
				_, err = s.ctrl.Apply("edit entry", func(st logbook.State) (logbook.State, error) {
					current, err := logbook.FindEntry(st, keys.scope(), keys.day, key)
					if err != nil {
						return st, err
					}
					updated = flags.apply(cmd, current)
					if cmd.Flags().Changed("time") {
						updated.Time = at
					}
					if cmd.Flags().Changed("position") {
						updated.Position = pos
					}
					return logbook.EditEntry(st, keys.scope(), keys.day, key, updated)
				})
				if err != nil {
					return report(cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", formatEntry(updated))
				return nil
			})
		},
	}

	keys.register(cmd)
	flags.register(cmd)
	cmd.Flags().StringVar(&at, "time", "", "New time in HH:MM")
	cmd.Flags().StringVar(&pos, "position", "", "New position text")

	return cmd
}

func newDeleteCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		keys keyFlags
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Remove an entry from the live log or an archived day.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				key, err := keys.key(args, s.ctrl.State().Daily.Date)
				if err != nil {
					return err
				}

				removed, err := logbook.FindEntry(s.ctrl.State(), keys.scope(), keys.day, key)
				if err != nil {
					return report(cmd, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatEntry(removed))

				// The answer is collected before Apply so the prompt does not hold the ledger.
				agreed := yes || confirmFrom(a.stdin(cmd), cmd.OutOrStdout()).Confirm(logbook.DeletePrompt)
				_, err = s.ctrl.Apply("delete entry", func(st logbook.State) (logbook.State, error) {
					return logbook.DeleteEntry(st, keys.scope(), keys.day, key, logbook.ConfirmFunc(func(string) bool {
						return agreed
					}))
				})
				if err != nil {
					return report(cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", formatEntry(removed))
				return nil
			})
		},
	}

	keys.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
