package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/jobs"
	"github.com/yeisme/artvault/pkg/internal/storage"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "run one orphan file sweep round and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.InitConfig(configPath); err != nil {
			return err
		}

		mgr, err := storage.Init(cmd.Context())
		if err != nil {
			return err
		}

		grace := configs.GetConfig().Vault.GetSweepGrace()

		if err := jobs.NewSweeper(mgr, grace).Run(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "sweep finished")

		return nil
	},
}

// registerSweepCommand 注册 sweep 子命令.
func registerSweepCommand() {
	rootCmd.AddCommand(sweepCmd)
}
