package cmd

import (
	"fmt"
	"github.com/DamirAinullin/ManagedEsent/cmd/layout"
	"github.com/DamirAinullin/ManagedEsent/cmd/selftest"
	"github.com/DamirAinullin/ManagedEsent/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "isam",
		Short: "checked call layer for an ISAM storage engine",
		Long: fmt.Sprintf(`isam (v%s)

A checked call layer over the native entry points of an ISAM storage
engine: argument validation, native structure conversion, typed column
values, and scoped transactions and updates.

Every flag can also be set through the environment as ISAM_<FLAG>
(e.g. ISAM_MAX_SESSIONS=16). .env and .env.local are loaded if present.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of isam",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("isam v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(layout.LayoutCmd)
	RootCmd.AddCommand(selftest.SelftestCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupEngineFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
