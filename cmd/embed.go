package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/chathub/internal/widget"
	widgetPostgres "github.com/frahmantamala/chathub/internal/widget/postgres"
	"github.com/frahmantamala/chathub/pkg/logger"
	"github.com/spf13/cobra"
)

var embedTenant string

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Print the widget embed snippet for a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		conn, err := initDB(cfg.Database, false)
		if err != nil {
			return err
		}
		defer conn.Close()

		svc := widget.NewService(widgetPostgres.NewSettingsRepository(conn.Gorm), nil, nil,
			cfg.Widget.ScriptURL, logger.LoggerWrapper())
		code, err := svc.EmbedCode(context.Background(), embedTenant)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), code.Code)
		return nil
	},
}

func init() {
	embedCmd.Flags().StringVarP(&embedTenant, "tenant", "t", "default", "tenant id")
	rootCmd.AddCommand(embedCmd)
}
