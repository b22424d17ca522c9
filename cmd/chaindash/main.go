package main

import (
	"fmt"
	"os"

	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/errors"
	"github.com/rohankatakam/chaindash/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		if e, ok := errors.AsError(err); ok && verbose {
			fmt.Fprint(os.Stderr, e.DetailedString())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logging.Close()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chaindash",
	Short: "Chaindash - transformation dashboard over a Neo4j business graph",
	Long: `Chaindash serves schema, graph explorer, dashboard metrics and
business-chain reports computed from a Neo4j transformation graph.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		loadErr := err
		if err != nil {
			cfg = config.Default()
		}

		level := logging.ParseLevel(cfg.Log.Level)
		if verbose {
			level = logging.DEBUG
		}
		lg, err := logging.Initialize(logging.Config{
			Level:      level,
			OutputFile: cfg.Log.File,
			JSONFormat: cfg.Log.JSON,
		})
		if err != nil {
			return err
		}
		logger = lg.Logrus()

		if loadErr != nil {
			logger.WithError(loadErr).Warn("Failed to load config, using defaults")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .chaindash/chaindash.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`Chaindash {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(countsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(healthCmd)
}
