package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/bridgelog/internal/calendar"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

func newTodayCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the live day: running log, fuel used and notes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				printLiveDay(cmd, s.ctrl.State())
				return nil
			})
		},
	}

	return cmd
}

func printLiveDay(cmd *cobra.Command, st logbook.State) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s  %s\n", calendar.Pretty(st.Daily.Date), st.Daily.Mode, orDash(st.Daily.Location))
	if st.Vessel.Name != "" {
		fmt.Fprintf(out, "Vessel: %s\n", st.Vessel.Name)
	}
	fmt.Fprintf(out, "Position: %s\n", orDash(st.Pos.Composed()))
	if line := logbook.WeatherLine(st.LastWeather); line != "" {
		fmt.Fprintf(out, "Weather (%s): %s\n", st.LocLabel, line)
	}

	entries := st.TodaysLog()
	fuel := logbook.ComputeFuel(entries, logbook.CarryInto(st.History, st.Daily.Date))
	printFuel(out, fuel.UsedSum, fuel.LastTotalFuel)
	printEntries(out, entries, fuel)
	printNotes(out, st.TodaysNotes())
}
