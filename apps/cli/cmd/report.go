package cmd

import (
	"github.com/spf13/cobra"

	"github.com/canterburyairpatrol/smm-asset/packages/asset"
)

var reportCmd = &cobra.Command{
	Use:   "report [asset]",
	Short: "Send one position report and print the reply command",
	Long: `Send one position report for an asset and print the command the
server answers with.

Examples:
  smm-asset report drone7 --lat -43.5 --lon 172.6
  smm-asset report drone7 --lat -43.5 --lon 172.6 --alt 120 --bearing 270 --fix 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: reportCommand,
}

var (
	reportLatFlag     float64
	reportLonFlag     float64
	reportAltFlag     uint
	reportBearingFlag uint16
	reportFixFlag     uint8
)

func init() {
	reportCmd.Flags().Float64Var(&reportLatFlag, "lat", 0, "Latitude in decimal degrees")
	reportCmd.Flags().Float64Var(&reportLonFlag, "lon", 0, "Longitude in decimal degrees")
	reportCmd.Flags().UintVar(&reportAltFlag, "alt", 0, "Altitude in metres")
	reportCmd.Flags().Uint16Var(&reportBearingFlag, "bearing", 0, "Bearing in degrees")
	reportCmd.Flags().Uint8Var(&reportFixFlag, "fix", 3, "GPS fix: 0 none, 2 2D, 3 3D")
	_ = reportCmd.MarkFlagRequired("lat")
	_ = reportCmd.MarkFlagRequired("lon")
}

func reportCommand(cmd *cobra.Command, args []string) error {
	c, err := connect(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	a, err := c.asset(args)
	if err != nil {
		return err
	}
	command, err := a.ReportPosition(asset.Position{
		Latitude:  reportLatFlag,
		Longitude: reportLonFlag,
		Altitude:  reportAltFlag,
		Bearing:   reportBearingFlag,
		Fix:       reportFixFlag,
	})
	if err != nil {
		return err
	}
	c.out.FormatCommand(a, command)
	return nil
}
