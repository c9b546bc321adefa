// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the exam-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/exam-engine/internal/logging"
	"github.com/pdiddy/exam-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is the resolved configuration: defaults, then config file, then
// environment. Populated before any subcommand runs.
var cfg types.Config

// logger carries structured pipeline diagnostics. Human-readable progress
// stays on stdout.
var logger *zap.Logger

// rootCmd is the base command for the exam-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "exam-engine",
	Short: "Extract structured questions from construction-exam papers",
	Long: `exam-engine turns raw exam-paper text into structured question banks.
The pipeline recovers single-choice and multi-choice questions, case
studies with sub-questions, and answers from inconsistently formatted
documents, then stores everything in a searchable SQLite database.

Each stage is a subcommand: pagetext extracts per-page text from PDFs,
parse runs the extraction pipeline over manifest documents, and store
imports, searches, and exports the question bank.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = types.DefaultConfig()
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.Log.Level = "debug"
		}
		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./exam-engine.yaml or ~/.exam-engine/exam-engine.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log at debug level")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("exam-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".exam-engine"))
		}
	}

	viper.SetEnvPrefix("EXAM_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Registering defaults keys the environment lookups.
	defaults := types.DefaultConfig()
	viper.SetDefault("pagetext.tool", defaults.Pagetext.Tool)
	viper.SetDefault("pagetext.container_image", defaults.Pagetext.ContainerImage)
	viper.SetDefault("pagetext.out_dir", defaults.Pagetext.OutDir)
	viper.SetDefault("pagetext.chunk_size", defaults.Pagetext.ChunkSize)
	viper.SetDefault("parse.segment_threshold", defaults.Parse.SegmentThreshold)
	viper.SetDefault("parse.out_dir", defaults.Parse.OutDir)
	viper.SetDefault("store.path", defaults.Store.Path)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.format", defaults.Log.Format)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
