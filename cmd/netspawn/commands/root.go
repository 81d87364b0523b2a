// Package commands wires the netspawn CLI: analyze runs the inference
// and generation pipeline over captured-traffic exports, runs inspects
// stored run history.
package commands

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"netspawn/internal/config"
	"netspawn/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "netspawn",
	Short: "Infer network topology from traffic and generate a replica environment",
	Long: `netspawn ingests captured network traffic (flow exports, flow records),
infers the structure of the observed network (hosts, subnets, roles,
connections), and generates declarative infrastructure definitions that
provision an equivalent topology for testing or replication.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().String("db", "", "path to run-history database (disabled when empty)")

	viper.SetEnvPrefix("NETSPAWN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

// loadConfig reads the analysis configuration selected by flag or
// environment.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetString("config"))
}

// newLogger builds the logger from the shared flags.
func newLogger() *logrus.Logger {
	return logging.New(logging.Options{
		Level: viper.GetString("log-level"),
		JSON:  viper.GetBool("log-json"),
	})
}
