// Package cli provides the ppltr command line interface.
package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ppltr/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
	envFile   string
)

var rootCmd = &cobra.Command{
	Use:   "ppltr",
	Short: "Recommend privacy design patterns for privacy requirements",
	Long: `ppltr builds learning-to-rank features for privacy requirements against a
corpus of privacy design patterns and ranks the patterns with a trained model.

Each (requirement, pattern) pair gets 26 features: lexical overlap, term
frequency, TF-IDF and BM25 statistics, and cosine similarities in two
embedding spaces.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return loadEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.ppltr)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with API keys and PPLTR_* overrides")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases the services it created.
func Execute(ctx context.Context) error {
	defer closeServices()
	defer logger.Sync()
	return rootCmd.ExecuteContext(ctx)
}

// loadEnv reads a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
