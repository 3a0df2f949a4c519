package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database",
	Run: func(_ *cobra.Command, _ []string) {
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		db, err := store.Init(config.DB)
		if err != nil {
			logger.Fatal("initializing the database", zap.Error(err), zap.String("path", config.DB))
		}
		defer db.Close()

		logger.Info("database initialized", zap.String("path", db.Path()), zap.Int("schema", store.SchemaVersion))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
