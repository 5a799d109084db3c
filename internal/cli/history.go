package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/faizmokh/bridgelog/internal/calendar"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

func newSaveDayCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save-day",
		Short: "Archive the live day now without changing the date.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				next, err := s.ctrl.Apply("save day", func(st logbook.State) (logbook.State, error) {
					return logbook.SaveDay(st), nil
				})
				if err != nil {
					return err
				}
				day := next.History[0]
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %d entries, ", day.Date, len(day.Entries))
				printFuel(cmd.OutOrStdout(), day.Fuel.UsedLitres, day.Fuel.LastTotalFuel)
				return nil
			})
		},
	}

	return cmd
}

func newRolloverCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Archive the live day if the calendar date has changed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				st := s.ctrl.State()
				if !s.rolled {
					fmt.Fprintf(cmd.OutOrStdout(), "Still %s, nothing to roll over.\n", st.Daily.Date)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived %s, live day is now %s.\n", st.History[0].Date, st.Daily.Date)
				return nil
			})
		},
	}

	return cmd
}

func newHistoryCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and export archived days.",
	}

	cmd.AddCommand(
		newHistoryListCommand(ctx, a),
		newHistoryShowCommand(ctx, a),
		newHistoryExportCommand(ctx, a),
	)

	return cmd
}

func newHistoryListCommand(ctx context.Context, a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived days, most recent first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("limit must be a positive integer")
			}
			return a.with(ctx, cmd, func(s *session) error {
				history := s.ctrl.State().History
				out := cmd.OutOrStdout()
				if len(history) == 0 {
					fmt.Fprintln(out, "(no archived days)")
					return nil
				}

				archive := logbook.NewArchive(s.manager)
				exported := map[string]bool{}
				scanned := map[string]bool{}
				for i, d := range history {
					if i >= limit {
						break
					}
					month := d.Date
					if len(month) >= 7 {
						month = month[:7]
					}
					if !scanned[month] {
						scanned[month] = true
						if t, err := calendar.Parse(d.Date, time.UTC); err == nil {
							dates, err := archive.ArchivedDates(ctx, t)
							if err != nil {
								return err
							}
							for _, date := range dates {
								exported[date] = true
							}
						}
					}

					used := 0.0
					if d.Fuel != nil {
						used = d.Fuel.UsedLitres
					}
					mark := ""
					if exported[d.Date] {
						mark = "  [md]"
					}
					fmt.Fprintf(out, "%s  %-8s  %-20s  %3d entries  %s L%s\n",
						d.Date, d.Mode, orDash(d.Location), len(d.Entries), calendar.Litres(used), mark)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 30, "Number of days to list")

	return cmd
}

func newHistoryShowCommand(ctx context.Context, a *app) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "show <date>",
		Short: "Show an archived day.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := calendar.Parse(args[0], time.UTC); err != nil {
				return fmt.Errorf("parse date: %w", err)
			}
			return a.with(ctx, cmd, func(s *session) error {
				day, ok := s.ctrl.State().Day(args[0])
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No archived day for %s\n", args[0])
					return nil
				}
				if markdown {
					fmt.Fprint(cmd.OutOrStdout(), logbook.RenderDay(day))
					return nil
				}
				printArchivedDay(cmd, day, s.ctrl.State().History)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the day as Markdown")

	return cmd
}

func printArchivedDay(cmd *cobra.Command, d logbook.DayRecord, history []logbook.DayRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s  %s\n", calendar.Pretty(d.Date), d.Mode, orDash(d.Location))
	if d.Vessel.Name != "" {
		fmt.Fprintf(out, "Vessel: %s\n", d.Vessel.Name)
	}
	if line := logbook.WeatherLine(d.Weather); line != "" {
		fmt.Fprintf(out, "Weather: %s\n", line)
	}
	if d.Fuel != nil {
		printFuel(out, d.Fuel.UsedLitres, d.Fuel.LastTotalFuel)
	}
	printEntries(out, d.Entries, logbook.ComputeFuel(d.Entries, logbook.CarryInto(history, d.Date)))
	printNotes(out, d.Notes)
}

func newHistoryExportCommand(ctx context.Context, a *app) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write archived days into the monthly Markdown archive.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				st := s.ctrl.State()
				archive := logbook.NewArchive(s.manager)

				var days []logbook.DayRecord
				if dateFlag != "" {
					day, ok := st.Day(dateFlag)
					if !ok {
						return fmt.Errorf("%w: %s", logbook.ErrDayNotFound, dateFlag)
					}
					days = append(days, day)
				} else {
					seen := map[string]bool{}
					for _, d := range st.History {
						if seen[d.Date] {
							continue
						}
						seen[d.Date] = true
						days = append(days, d)
					}
				}

				for _, d := range days {
					path, replaced, err := archive.ExportDay(ctx, d)
					if err != nil {
						return err
					}
					verb := "Exported"
					if replaced {
						verb = "Updated"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s in %s\n", verb, d.Date, path)
				}
				if len(days) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "(no archived days)")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Export only this day (YYYY-MM-DD)")

	return cmd
}
