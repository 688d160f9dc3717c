package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askQuery   string
	askVerbose bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a single question about the indexed documents",
	Long: `Run one question through the full pipeline and print the answer.

Examples:
  docqa ask -q "what is the standard deduction?"
  docqa ask -q "how are capital gains taxed?" --verbose`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question to ask (required)")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "print pipeline details")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	orch, cleanup, err := buildOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	answer, qc := orch.Answer(cmd.Context(), askQuery)

	if askVerbose {
		fmt.Printf("query id:  %s\n", qc.ID)
		fmt.Printf("state:     %s\n", qc.State)
		if qc.Rewritten != "" && qc.Rewritten != qc.RawQuery {
			fmt.Printf("rewritten: %s\n", qc.Rewritten)
		}
		for _, c := range qc.Retrieved {
			fmt.Printf("source:    %s (score %.3f)\n", c.Source, c.Score)
		}
		fmt.Println()
	}

	fmt.Println(answer)
	return nil
}
