package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"hawkset.claimhawk.org/version"
)

func init() {
	RootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("deps", false, "also list dependency versions")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hawkset", version.GetVersion())

		info := version.GetBuildInfo()
		fmt.Println("go:", info.GoVersion)

		if deps, _ := cmd.Flags().GetBool("deps"); deps {
			for _, dep := range info.Dependencies {
				fmt.Printf("  %s %s\n", dep.Path, dep.Version)
			}
		}
	},
}
