package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docqa/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Document QA - index plain-text documents and ask questions about them",
	Long: `docqa indexes a directory of plain-text documents into a vector index
and answers questions about them through an LLM pipeline: the query is
triaged and rewritten, relevant excerpts are retrieved by semantic
similarity, and an answer is synthesized from the excerpts.

Example usage:
  docqa index                  # Index the configured documents directory
  docqa ask -q "what is the standard deduction?"
  docqa chat                   # Interactive question session
  docqa purge                  # Delete the index`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// Provider keys commonly live in a local .env file.
		_ = godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docqa.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
