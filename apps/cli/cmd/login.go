package cmd

import (
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print the session state",
	Long: `Log in to the server and print the resulting session state.

Examples:
  smm-asset login --host https://smm.example.com --user pilot
  SMM_PASSWORD=secret smm-asset login -H https://smm.example.com -u pilot`,
	Args: cobra.NoArgs,
	RunE: loginCommand,
}

func loginCommand(cmd *cobra.Command, args []string) error {
	c, err := connect(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	c.out.FormatState(c.sess.Host(), c.sess.State())
	return nil
}
