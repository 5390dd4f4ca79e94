package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canterburyairpatrol/smm-asset/packages/asset"
)

var searchCmd = &cobra.Command{
	Use:   "search [asset]",
	Short: "Find the closest search for an asset",
	Long: `Ask the server for the closest search the asset can take on from a
position. With --accept the asset is assigned to it.

Examples:
  smm-asset search drone7 --lat -43.5 --lon 172.6
  smm-asset search drone7 --lat -43.5 --lon 172.6 --waypoints -v
  smm-asset search drone7 --lat -43.5 --lon 172.6 --accept`,
	Args: cobra.MaximumNArgs(1),
	RunE: searchCommand,
}

var (
	searchLatFlag       float64
	searchLonFlag       float64
	searchAcceptFlag    bool
	searchWaypointsFlag bool
)

func init() {
	searchCmd.Flags().Float64Var(&searchLatFlag, "lat", 0, "Latitude in decimal degrees")
	searchCmd.Flags().Float64Var(&searchLonFlag, "lon", 0, "Longitude in decimal degrees")
	searchCmd.Flags().BoolVar(&searchAcceptFlag, "accept", false, "Begin the search")
	searchCmd.Flags().BoolVar(&searchWaypointsFlag, "waypoints", false, "Fetch the search path")
	_ = searchCmd.MarkFlagRequired("lat")
	_ = searchCmd.MarkFlagRequired("lon")
}

func searchCommand(cmd *cobra.Command, args []string) error {
	c, err := connect(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	a, err := c.asset(args)
	if err != nil {
		return err
	}
	s, err := a.FindSearch(searchLatFlag, searchLonFlag)
	if errors.Is(err, asset.ErrNoSearch) {
		fmt.Fprintf(cmd.OutOrStdout(), "no search available for %s\n", a.Name)
		return nil
	}
	if err != nil {
		return err
	}

	var waypoints []asset.Waypoint
	if searchWaypointsFlag {
		if waypoints, err = s.Waypoints(); err != nil {
			return err
		}
	}
	c.out.FormatSearch(s, waypoints)

	if searchAcceptFlag {
		if err := s.Accept(); err != nil {
			return fmt.Errorf("accept search: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s began %s\n", a.Name, s.URL)
	}
	return nil
}
