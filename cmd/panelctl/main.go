// Command panelctl runs a keypad session against the security service and
// provisions subjects.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"control_panel/internal/config"
	"control_panel/internal/logger"
	"control_panel/internal/securityclient"

	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:          "panelctl",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "path to config file (default configs/config.yml)")

	cmd.AddCommand(keypadCommand())
	cmd.AddCommand(provisionCommand())

	if err := cmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}

func listenStop() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// setup loads config and builds the logger and security client shared by
// every subcommand.
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, *securityclient.Client, error) {
	cfg, err := config.LoadFlags(cmd.Flags(), nil)
	if err != nil {
		return nil, nil, nil, err
	}
	lg := logger.New(cfg.Log.Level)
	client := securityclient.New(securityclient.Config{
		BaseURL:  cfg.Security.BaseURL,
		Username: cfg.Security.Username,
		Password: cfg.Security.Password,
		Timeout:  cfg.Security.Timeout,
	}, lg)
	return cfg, lg, client, nil
}
