package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/model"
	"github.com/yeisme/artvault/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:   "ls",
		Short: "list all registered database types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered database types:")
			for _, dbType := range db.GetRegisteredDBTypes() {
				fmt.Fprintf(cmd.OutOrStdout(), " - %s\n", dbType)
			}
		},
	}

	dbPingCmd = &cobra.Command{
		Use:   "ping",
		Short: "check database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openDB(cmd)
			if err != nil {
				return err
			}

			sqlDB, err := client.DB.DB()
			if err != nil {
				return err
			}

			if err := sqlDB.PingContext(cmd.Context()); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")

			return nil
		},
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "apply the metadata schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openDB(cmd)
			if err != nil {
				return err
			}

			if err := client.AutoMigrate(&model.Artifact{}); err != nil {
				return fmt.Errorf("migrate failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")

			return nil
		},
	}
)

// openDB 按配置建立数据库连接，供离线子命令使用.
func openDB(cmd *cobra.Command) (*db.Client, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, err
	}

	cfg := configs.GetConfig()

	return db.New(cmd.Context(), &cfg.DB)
}

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)

	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbPingCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}
