package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faizmokh/bridgelog/internal/logbook"
)

func newPositionCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		pos    logbook.Position
		coords bool
	)

	cmd := &cobra.Command{
		Use:   "position",
		Short: "Set or show the position used by new entries.",
		Long:  "position sets the degrees, minutes and hemispheres of the scratch position. With --coords the position is also converted to decimal degrees for weather pulls.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := changedAny(cmd, "lat-deg", "lat-min", "lat-hem", "lon-deg", "lon-min", "lon-hem", "coords")
			return a.with(ctx, cmd, func(s *session) error {
				if changed {
					_, err := s.ctrl.Apply("position", func(st logbook.State) (logbook.State, error) {
						next := st.Pos
						set := func(name string, dst *string, v string) {
							if cmd.Flags().Changed(name) {
								*dst = strings.TrimSpace(v)
							}
						}
						set("lat-deg", &next.LatDeg, pos.LatDeg)
						set("lat-min", &next.LatMin, pos.LatMin)
						set("lat-hem", &next.LatHem, strings.ToUpper(pos.LatHem))
						set("lon-deg", &next.LonDeg, pos.LonDeg)
						set("lon-min", &next.LonMin, pos.LonMin)
						set("lon-hem", &next.LonHem, strings.ToUpper(pos.LonHem))
						if next.LatHem != "" && next.LatHem != "N" && next.LatHem != "S" {
							return st, fmt.Errorf("latitude hemisphere must be N or S")
						}
						if next.LonHem != "" && next.LonHem != "E" && next.LonHem != "W" {
							return st, fmt.Errorf("longitude hemisphere must be E or W")
						}
						st = logbook.SetPosition(st, next)
						if coords {
							return logbook.CoordsFromPosition(st)
						}
						return st, nil
					})
					if err != nil {
						return report(cmd, err)
					}
				}

				st := s.ctrl.State()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Position: %s\n", orDash(st.Pos.Composed()))
				if st.Coords.Lat != nil && st.Coords.Lon != nil {
					fmt.Fprintf(out, "Coords: %s\n", st.LocLabel)
				}
				return nil
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&pos.LatDeg, "lat-deg", "", "Latitude degrees")
	fl.StringVar(&pos.LatMin, "lat-min", "", "Latitude minutes")
	fl.StringVar(&pos.LatHem, "lat-hem", "", "Latitude hemisphere (N|S)")
	fl.StringVar(&pos.LonDeg, "lon-deg", "", "Longitude degrees")
	fl.StringVar(&pos.LonMin, "lon-min", "", "Longitude minutes")
	fl.StringVar(&pos.LonHem, "lon-hem", "", "Longitude hemisphere (E|W)")
	fl.BoolVar(&coords, "coords", false, "Also store the position as decimal coordinates")

	return cmd
}

func newDailyCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		location string
		mode     string
	)

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Set or show the live day's location and vessel mode.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			next := logbook.Mode(mode)
			if mode != "" && !next.Valid() {
				return fmt.Errorf("invalid mode %q (expected %s|%s|%s|%s)", mode,
					logbook.ModeAlong, logbook.ModeAnchor, logbook.ModeUnderway, logbook.ModeMoored)
			}
			return a.with(ctx, cmd, func(s *session) error {
				if changedAny(cmd, "location", "mode") {
					_, err := s.ctrl.Apply("daily", func(st logbook.State) (logbook.State, error) {
						loc := st.Daily.Location
						if cmd.Flags().Changed("location") {
							loc = strings.TrimSpace(location)
						}
						return logbook.SetDaily(st, loc, next), nil
					})
					if err != nil {
						return err
					}
				}
				d := s.ctrl.State().Daily
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", d.Date, d.Mode, orDash(d.Location))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Location of the vessel today")
	cmd.Flags().StringVar(&mode, "mode", "", "Along, @Anchor, Underway or Moored")

	return cmd
}

func newVesselCommand(ctx context.Context, a *app) *cobra.Command {
	var v logbook.Vessel

	cmd := &cobra.Command{
		Use:   "vessel",
		Short: "Set or show the vessel particulars.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				if changedAny(cmd, "name", "call-sign", "mmsi", "imo", "official-no", "master", "notes") {
					_, err := s.ctrl.Apply("vessel", func(st logbook.State) (logbook.State, error) {
						next := st.Vessel
						set := func(name string, dst *string, val string) {
							if cmd.Flags().Changed(name) {
								*dst = strings.TrimSpace(val)
							}
						}
						set("name", &next.Name, v.Name)
						set("call-sign", &next.CallSign, v.CallSign)
						set("mmsi", &next.MMSI, v.MMSI)
						set("imo", &next.IMO, v.IMO)
						set("official-no", &next.OfficialNo, v.OfficialNo)
						set("master", &next.Master, v.Master)
						set("notes", &next.Notes, v.Notes)
						return logbook.SetVessel(st, next), nil
					})
					if err != nil {
						return err
					}
				}

				cur := s.ctrl.State().Vessel
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Name: %s\n", orDash(cur.Name))
				fmt.Fprintf(out, "Call sign: %s\n", orDash(cur.CallSign))
				fmt.Fprintf(out, "MMSI: %s\n", orDash(cur.MMSI))
				fmt.Fprintf(out, "IMO: %s\n", orDash(cur.IMO))
				fmt.Fprintf(out, "Official no.: %s\n", orDash(cur.OfficialNo))
				fmt.Fprintf(out, "Master: %s\n", orDash(cur.Master))
				if cur.Notes != "" {
					fmt.Fprintf(out, "Notes: %s\n", cur.Notes)
				}
				return nil
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&v.Name, "name", "", "Vessel name")
	fl.StringVar(&v.CallSign, "call-sign", "", "Radio call sign")
	fl.StringVar(&v.MMSI, "mmsi", "", "MMSI")
	fl.StringVar(&v.IMO, "imo", "", "IMO number")
	fl.StringVar(&v.OfficialNo, "official-no", "", "Official number")
	fl.StringVar(&v.Master, "master", "", "Master")
	fl.StringVar(&v.Notes, "notes", "", "Free-text notes")

	return cmd
}

func newWatchkeeperCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchkeeper [name ...]",
		Short: "Set or show the default watchkeeper for new entries.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				if len(args) > 0 {
					name := strings.Join(args, " ")
					if _, err := s.ctrl.Apply("watchkeeper", func(st logbook.State) (logbook.State, error) {
						return logbook.SetWatchkeeper(st, name), nil
					}); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Watchkeeper: %s\n", orDash(s.ctrl.State().Watchkeeper))
				return nil
			})
		},
	}

	return cmd
}

func changedAny(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
