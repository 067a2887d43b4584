package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the seekingquant CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("seekingquant version %s\n", version)
		fmt.Println("Dollar-denominated portfolio execution for IBKR")
		fmt.Println("https://github.com/Tvpower/seekingQuant")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
