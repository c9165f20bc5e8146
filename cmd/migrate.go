package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-apikeys/app/repository"
	"github.com/vibast-solutions/ms-go-apikeys/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the api_keys table if it does not exist",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.StoreDriver == config.StoreDriverMemory {
			return fmt.Errorf("nothing to migrate for the %s store", cfg.StoreDriver)
		}

		db, dialect, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err = repository.Migrate(context.Background(), db, dialect); err != nil {
			return err
		}

		logrus.WithField("dialect", string(dialect)).Info("Migrations applied")
		fmt.Println("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
