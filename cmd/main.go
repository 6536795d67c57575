package main

import (
	"fmt"
	"os"

	"github.com/Abraxas-365/bolsa/pkg/config"
	"github.com/Abraxas-365/bolsa/pkg/logx"
	"github.com/spf13/cobra"
)

const app = "bolsa"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "bolsa scores workers against vacancies and manages the resulting matches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file (env BOLSA_* overrides it)")
	rootCmd.AddCommand(serveCmd, workerCmd)
}

// loadConfig reads the configuration and configures the global logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := logx.Configure(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
