package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/weldsafe/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question and answer session",
	Long: `Opens a terminal chat with the answer engine.

Controls:
  Enter      - Ask
  PgUp/PgDn  - Scroll the transcript
  Ctrl+L     - Clear the transcript
  Esc        - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	rt, err := runtimeApp()
	if err != nil {
		return err
	}
	if !isTerminal(os.Stdin) || !isTerminal(cmd.OutOrStdout()) {
		return errors.New("chat needs an interactive terminal; use 'weldsafe ask' in scripts")
	}

	answers, err := rt.Answers(cmd.Context())
	if err != nil {
		return withHint("start answer engine", err)
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{Answers: answers})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
