package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "lazyref",
		Short: "Client-side object graph cache for a remote document store",
		Long:  ``,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Welcome to lazyref!")
		},
	}

	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newSnapshotCommand())
	cmd.AddCommand(newStoreCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
