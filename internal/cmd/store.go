package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kordat/lazyref/internal/store"
)

func newStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manages the development document store",
	}
	cmd.AddCommand(newStoreServeCommand())
	return cmd
}

func newStoreServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs an in-memory document store speaking the lazyref REST protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("lazyref.store")

			s := store.NewServer(store.New(), l)
			return s.Start(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")

	return cmd
}
