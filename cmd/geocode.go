package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/gbdash/internal/config"
	"github.com/theirongolddev/gbdash/internal/eventlog"
	"github.com/theirongolddev/gbdash/internal/geocode"
	"github.com/theirongolddev/gbdash/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagGeocodeEvent  int
	flagGeocodeAgenda string
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode LAT,LON",
	Short: "Look up the street address of coordinates",
	Long: "Reverse-geocode coordinates pasted from a map. With --event or --agenda\n" +
		"the address is written into that row of the workbook.",
	Args: cobra.ExactArgs(1),
	RunE: runGeocode,
}

func init() {
	geocodeCmd.Flags().IntVar(&flagGeocodeEvent, "event", 0, "Store the address on this event")
	geocodeCmd.Flags().StringVar(&flagGeocodeAgenda, "agenda", "", "Store the address on this agenda entry")
	rootCmd.AddCommand(geocodeCmd)
}

func runGeocode(c *cobra.Command, args []string) error {
	if !appCfg.Geocode.Enabled {
		return fmt.Errorf("geocoding is disabled; set enabled = true under [geocode] in %s", config.Path())
	}
	if flagGeocodeEvent != 0 && flagGeocodeAgenda != "" {
		return errors.New("--event and --agenda are exclusive")
	}
	lat, lon, err := geocode.ParseLatLon(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	client := geocode.NewClient(appCfg.Geocode.BaseURL, appCfg.Geocode.UserAgent)
	place, err := client.Reverse(ctx, lat, lon)
	if errors.Is(err, geocode.ErrRateLimited) {
		return fmt.Errorf("%w; wait a moment and retry", err)
	}
	if err != nil {
		return err
	}

	address := place.Short()
	fmt.Printf("  Address: %s\n", address)
	if place.DisplayName != "" && place.DisplayName != address {
		fmt.Printf("  Full:    %s\n", place.DisplayName)
	}
	fmt.Printf("  Map:     %s\n", geocode.MapsLink(address))

	switch {
	case flagGeocodeEvent != 0:
		return modify(func(lr *pipeline.LoadResult) error {
			e, err := eventlog.Get(lr.Book, flagGeocodeEvent)
			if err != nil {
				return err
			}
			e.Address = address
			_, err = eventlog.Update(lr.Book, e.ID, e)
			return err
		})
	case flagGeocodeAgenda != "":
		return modify(func(lr *pipeline.LoadResult) error {
			return setAgendaAddress(lr, flagGeocodeAgenda, address)
		})
	}
	return nil
}
