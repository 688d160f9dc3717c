package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/config"
	"docqa/internal/adapter/loader"
	"docqa/internal/adapter/ratelimit"
	"docqa/internal/adapter/splitter"
	"docqa/internal/usecase"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index documents for question answering",
	Long: `Load documents, split them into chunks, embed them and write the
vectors into the configured index. If the collection is already
populated the run is skipped; use 'docqa purge' to force a rebuild.

Examples:
  docqa index                  # Index the configured documents path
  docqa index ./my-documents   # Index a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndexCmd,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndexCmd(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	docsPath := cfg.Documents.Path
	if len(args) > 0 {
		docsPath = args[0]
	}
	if !filepath.IsAbs(docsPath) {
		docsPath = filepath.Join(GetRootDir(), docsPath)
	}

	info, err := os.Stat(docsPath)
	if err != nil {
		return fmt.Errorf("documents path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("documents path is not a directory: %s", docsPath)
	}

	if cfg.Index.Backend == "local" {
		if err := config.EnsureDataDir(GetRootDir()); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	idx, err := openIndex(cfg, GetRootDir())
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer idx.Close()

	split, err := splitter.New(cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap)
	if err != nil {
		return err
	}

	u := usecase.NewIndexer(
		loader.NewFS(docsPath, cfg.Documents.Includes, cfg.Documents.Excludes),
		split,
		embedder,
		idx,
		ratelimit.New(cfg.Indexing.BatchDelay()),
		cfg.Index.Collection,
		cfg.Indexing.BatchSize,
	)

	fmt.Printf("Indexing %s into collection %q...\n", docsPath, cfg.Index.Collection)

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Embedding chunks"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
			)
		}
		_ = bar.Set(done)
	}

	report, err := u.Run(cmd.Context(), progress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}
	if err != nil {
		if report != nil && report.Batches > 0 {
			fmt.Printf("Aborted after %d batches (%d records written).\n", report.Batches, report.RecordsWritten)
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	if report.Reused {
		fmt.Printf("Collection %q already populated, nothing to do. Run 'docqa purge' to rebuild.\n", cfg.Index.Collection)
		return nil
	}

	fmt.Printf("Indexed %d documents: %d chunks, %d records in %d batches.\n",
		report.Documents, report.Chunks, report.RecordsWritten, report.Batches)
	return nil
}
