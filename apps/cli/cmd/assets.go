package cmd

import (
	"github.com/spf13/cobra"

	"github.com/canterburyairpatrol/smm-asset/packages/asset"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List the assets the user may report as",
	Args:  cobra.NoArgs,
	RunE:  assetsCommand,
}

func assetsCommand(cmd *cobra.Command, args []string) error {
	c, err := connect(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	assets, err := asset.GetAssets(c.sess)
	if err != nil {
		return err
	}
	c.out.FormatAssets(assets)
	return nil
}
