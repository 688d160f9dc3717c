package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docqa/internal/adapter/index"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete the indexed collection",
	Long: `Delete the configured collection from the vector index so the next
'docqa index' run rebuilds it from scratch.`,
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	idx, err := openIndex(cfg, GetRootDir())
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer idx.Close()

	if err := idx.Delete(cfg.Index.Collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	// The local backend's persisted state goes away entirely, not just
	// the bucket.
	if local, ok := idx.(*index.Local); ok {
		if err := local.Destroy(); err != nil {
			return fmt.Errorf("failed to remove index file: %w", err)
		}
	}

	fmt.Printf("Collection %q deleted.\n", cfg.Index.Collection)
	return nil
}
