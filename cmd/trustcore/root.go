package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mealshare/trustcore/pkg/cli"
	"mealshare/trustcore/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "trustcore",
	Short: "MealShare trust and safety core",
	Long: `Trustcore screens user-generated listing text for prohibited terms and
computes the public location shown for a pickup address.

Content checks normalize text (case, leetspeak, punctuation, repeated
letters) before matching it against a prohibited-term dictionary. Public
locations are offset from the true point by a deterministic amount derived
from the address and owner, so the same listing always shows the same
public point.

Exit codes: 0 success, 1 prohibited content found, 2 configuration error,
3 other failure.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, cli.ErrViolation) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and TRUSTCORE_* environment if empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file named by --config, applying
// environment overrides and validation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.WrapConfigError(err)
	}
	return cfg, nil
}

// stdout returns the command's output writer. Tests call RunE functions
// with a command whose output is captured.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stdin(cmd *cobra.Command) io.Reader {
	if cmd == nil {
		return os.Stdin
	}
	return cmd.InOrStdin()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}
