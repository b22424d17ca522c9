package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after file, .env and environment overrides.
The Neo4j password is masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := writeConfig(os.Stdout, cfg); err != nil {
			return err
		}
		res := cfg.Validate()
		if res.HasErrors() {
			fmt.Fprintf(os.Stderr, "\n%s", res.Error())
			return nil
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		return nil
	},
}

func writeConfig(w io.Writer, c *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Masked()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
