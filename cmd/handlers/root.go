/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"io"
	"os"

	"dailytrivia/internal/config"
	"dailytrivia/internal/logger"

	"github.com/spf13/cobra"
)

// rootOptions is shared by every command. cfg is set before any RunE runs.
type rootOptions struct {
	configFile string
	cfg        *config.Config
	logFile    io.Closer
}

// NewRootCmd creates the root command with all subcommands attached. Running
// it without a subcommand generates a game.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	gen := &generateFlags{}

	rootCmd := &cobra.Command{
		Use:   "dailytrivia",
		Short: "Generate a daily trivia game from a clue archive",
		Long: `Daily Trivia - game generator

Assembles one game per calendar date: 8 rounds of 3 same-category questions
with rising difficulty, plus a final clue. Clues that only make sense with
their category shown are dropped or rewritten. Used clues are recorded in a
ledger so no clue appears twice.

Examples:
  # Generate the next free date
  dailytrivia

  # Generate a specific date and print the whole game
  dailytrivia --date 2026-03-01 --json

  # Inspect stored games
  dailytrivia games list
  dailytrivia games show 2026-03-01 --answers`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts, gen, cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is ./.dailytrivia.yaml or $HOME/.dailytrivia.yaml)")
	gen.register(rootCmd)

	rootCmd.AddCommand(NewGamesCmd(opts))
	rootCmd.AddCommand(NewLedgerCmd(opts))
	rootCmd.AddCommand(NewScreenCmd(opts))

	return rootCmd
}

// Execute runs the root command. Failures are printed to stderr and exit 1.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads configuration and configures logging.
func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	var out io.Writer = os.Stderr
	switch cfg.Logging.Output {
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.Logging.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		o.logFile = f
		out = f
	}

	if err := logger.Configure(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	}); err != nil {
		return err
	}

	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
	return nil
}

func (o *rootOptions) close() {
	if o.logFile != nil {
		_ = o.logFile.Close()
		o.logFile = nil
	}
}
