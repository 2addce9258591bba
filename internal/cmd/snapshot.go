package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kordat/lazyref/internal/config"
	"github.com/kordat/lazyref/internal/snapshot"
)

func newSnapshotCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Exports the configured classes from the store into a repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("lazyref.snapshot")
			l.Info("starting snapshot!")

			sid := uuid.Must(uuid.NewUUID())

			c, err := config.NewLazyrefFromFile(configPath)
			if err != nil {
				return err
			}

			fetcher, err := config.InitializeFetcher(ctx, c, l)
			if err != nil {
				return err
			}

			repository, err := config.InitializeRepository(c, sid.String(), l)
			if err != nil {
				return err
			}

			s, err := snapshot.New(
				snapshot.WithLogger(l),
				snapshot.WithFetcher(fetcher),
				snapshot.WithLister(fetcher),
				snapshot.WithRepository(repository),
				snapshot.WithClasses(c.Snapshot.Classes...),
			)
			if err != nil {
				return err
			}

			catalog, err := s.Run(ctx, sid)
			if err != nil {
				return err
			}

			l.Info("snapshot finished",
				zap.String("sid", sid.String()),
				zap.Int("records", catalog.NumRecordsProcessed))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")

	return cmd
}
