package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartcity/trafficsim/internal/domain"
	"github.com/smartcity/trafficsim/internal/service"
)

// NewRootCommand builds the trafficctl command tree.
// now may be nil to use the wall clock.
func NewRootCommand(now service.Clock) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRAFFICCTL")
	v.AutomaticEnv()

	if now == nil {
		now = time.Now
	}

	newServices := func() (*service.TrafficService, *service.PredictionService) {
		rng := service.NewLockedRandom(v.GetInt64("seed"))
		traffic := service.NewTrafficService(rng, service.WithClock(now))
		return traffic, service.NewPredictionService(traffic, rng)
	}

	root := &cobra.Command{
		Use:           "trafficctl",
		Short:         "Generates simulated city traffic data",
		Long:          `trafficctl prints simulated traffic snapshots, history, forecasts and routes as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Int64("seed", 0, "Random seed (0 uses the current time)")
	_ = v.BindPFlag("seed", root.PersistentFlags().Lookup("seed"))

	root.AddCommand(
		newSnapshotCommand(v, newServices),
		&cobra.Command{
			Use:   "stats",
			Short: "Print aggregate statistics over the current snapshot",
			RunE: func(cmd *cobra.Command, args []string) error {
				traffic, _ := newServices()
				return writeJSON(cmd.OutOrStdout(), traffic.CurrentSnapshot().Stats())
			},
		},
		newHistoryCommand(v, newServices),
		newForecastCommand(v, newServices),
		newRouteCommand(v, newServices),
	)

	return root
}

type servicesFactory func() (*service.TrafficService, *service.PredictionService)

func newSnapshotCommand(v *viper.Viper, newServices servicesFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the current traffic snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			traffic, _ := newServices()
			snap := traffic.CurrentSnapshot()
			if raw := v.GetString("level"); raw != "" {
				level, err := domain.ParseCongestionLevel(raw)
				if err != nil {
					return err
				}
				snap = snap.WithLevel(level)
			}
			return writeJSON(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().String("level", "", "Only print readings at this congestion level")
	_ = v.BindPFlag("level", cmd.Flags().Lookup("level"))
	return cmd
}

func newHistoryCommand(v *viper.Viper, newServices servicesFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print hourly snapshots for a past window with trend series",
		RunE: func(cmd *cobra.Command, args []string) error {
			traffic, _ := newServices()
			snapshots, err := traffic.HistoricalSnapshots(v.GetInt("history-hours"), v.GetInt("step"))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"snapshots": snapshots,
				"trends":    service.TrendSeries(snapshots),
			})
		},
	}
	cmd.Flags().Int("hours", 24, "History window in hours")
	cmd.Flags().Int("step", 1, "Hours between snapshots")
	_ = v.BindPFlag("history-hours", cmd.Flags().Lookup("hours"))
	_ = v.BindPFlag("step", cmd.Flags().Lookup("step"))
	return cmd
}

func newForecastCommand(v *viper.Viper, newServices servicesFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print a traffic prediction for the monitored roads",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, prediction := newServices()
			summary, err := prediction.PredictTraffic(cmd.Context(), v.GetInt("hours"))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().Int("hours", 1, "Hours ahead to predict")
	_ = v.BindPFlag("hours", cmd.Flags().Lookup("hours"))
	return cmd
}

func newRouteCommand(v *viper.Viper, newServices servicesFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Print a synthetic route prediction between two places",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, prediction := newServices()
			route, err := prediction.PredictRoute(cmd.Context(), v.GetString("source"), v.GetString("destination"), v.GetInt("route-hours"))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), route)
		},
	}
	cmd.Flags().String("source", "", "Route start (free text)")
	cmd.Flags().String("destination", "", "Route end (free text)")
	cmd.Flags().Int("hours", 0, "Hours ahead to predict")
	_ = v.BindPFlag("source", cmd.Flags().Lookup("source"))
	_ = v.BindPFlag("destination", cmd.Flags().Lookup("destination"))
	_ = v.BindPFlag("route-hours", cmd.Flags().Lookup("hours"))
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("cli: failed to encode output: %w", err)
	}
	return nil
}
