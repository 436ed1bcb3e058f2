package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. The returned func releases whatever
// the executed command opened and must be called after Execute.
func newRootCmd() (*cobra.Command, func()) {
	flags := &globalFlags{}
	var a *app

	root := &cobra.Command{
		Use:           "ethtransfer",
		Short:         "Read balances and transfer ether on a development ledger node",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(cmd.Context(), flags)
			return err
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&flags.endpoint, "endpoint", "", "ledger endpoint URL, overrides ledger.endpoint")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	appFn := func() *app { return a }
	root.AddCommand(
		newAccountsCmd(appFn),
		newBalanceCmd(appFn),
		newTransferCmd(appFn),
		newDemoCmd(appFn),
		newServeCmd(appFn),
	)
	cleanup := func() {
		if a != nil {
			a.Close()
			a = nil
		}
	}
	return root, cleanup
}
