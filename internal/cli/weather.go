package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/bridgelog/internal/controller"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

func newWeatherCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		lat, lon float64
		cached   bool
	)

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Pull current conditions for the ledger's coordinates.",
		Long:  "weather fetches current and marine conditions from Open-Meteo and stores the snapshot on the ledger. --lat and --lon set the coordinates first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if latSet != lonSet {
				return fmt.Errorf("--lat and --lon must be given together")
			}
			if latSet && (lat < -90 || lat > 90 || lon < -180 || lon > 180) {
				return fmt.Errorf("coordinates out of range")
			}

			return a.with(ctx, cmd, func(s *session) error {
				out := cmd.OutOrStdout()
				if latSet {
					if _, err := s.ctrl.Apply("coords", func(st logbook.State) (logbook.State, error) {
						return logbook.SetCoords(st, lat, lon), nil
					}); err != nil {
						return err
					}
				}

				if cached {
					st := s.ctrl.State()
					fmt.Fprintf(out, "%s: %s\n", st.LocLabel, orDash(logbook.WeatherLine(st.LastWeather)))
					return nil
				}

				wx, err := s.ctrl.RefreshWeather(ctx)
				if errors.Is(err, controller.ErrNoCoords) {
					return fmt.Errorf("%w: pass --lat/--lon or run `bridgelog position --coords`", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s\n", s.ctrl.State().LocLabel, orDash(logbook.WeatherLine(wx)))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in decimal degrees (south negative)")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude in decimal degrees (west negative)")
	cmd.Flags().BoolVar(&cached, "cached", false, "Show the last stored snapshot without pulling")

	return cmd
}
