package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canterburyairpatrol/smm-asset/packages/asset"
)

var completeCmd = &cobra.Command{
	Use:   "complete [asset]",
	Short: "Mark a search finished",
	Long: `Tell the server an asset has finished a search. Without --search the
closest search to --lat/--lon is completed.

Examples:
  smm-asset complete drone7 --search /search/12/json/
  smm-asset complete drone7 --lat -43.5 --lon 172.6`,
	Args: cobra.MaximumNArgs(1),
	RunE: completeCommand,
}

var (
	completeSearchFlag string
	completeLatFlag    float64
	completeLonFlag    float64
)

func init() {
	completeCmd.Flags().StringVar(&completeSearchFlag, "search", "", "Search object URL")
	completeCmd.Flags().Float64Var(&completeLatFlag, "lat", 0, "Latitude in decimal degrees")
	completeCmd.Flags().Float64Var(&completeLonFlag, "lon", 0, "Longitude in decimal degrees")
	completeCmd.MarkFlagsRequiredTogether("lat", "lon")
	completeCmd.MarkFlagsOneRequired("search", "lat")
	completeCmd.MarkFlagsMutuallyExclusive("search", "lat")
}

func completeCommand(cmd *cobra.Command, args []string) error {
	c, err := connect(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	a, err := c.asset(args)
	if err != nil {
		return err
	}

	var s *asset.Search
	if completeSearchFlag != "" {
		s = a.SearchAt(completeSearchFlag)
	} else if s, err = a.FindSearch(completeLatFlag, completeLonFlag); err != nil {
		return err
	}

	if err := s.Complete(); err != nil {
		return fmt.Errorf("complete search: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s finished %s\n", a.Name, s.URL)
	return nil
}
