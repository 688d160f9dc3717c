package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question session",
	Long: `Start a read-eval-print loop over the indexed documents. Each line
is a question; type "exit", "quit" or "q" to leave.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	orch, cleanup, err := buildOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := GetConfig()
	fmt.Printf("docqa chat — ask questions about %s. Type \"exit\" to leave.\n", cfg.LLM.Domain)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "exit", "quit", "q":
			return nil
		}

		answer, _ := orch.Answer(cmd.Context(), question)
		fmt.Println(answer)
		fmt.Println()
	}

	return scanner.Err()
}
