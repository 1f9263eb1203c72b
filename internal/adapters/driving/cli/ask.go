package cli

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/weldsafe/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one safety question",
	Long: `Answers a single question from the indexed corpus and prints the answer.
Multiple arguments are joined with spaces.

Output is styled when writing to a terminal and plain text otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the --json shape.
type askOutput struct {
	Answer        string   `json:"answer"`
	Emergency     bool     `json:"emergency"`
	Fallback      bool     `json:"fallback"`
	Clarification bool     `json:"clarification"`
	Citations     []string `json:"citations"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := runtimeApp()
	if err != nil {
		return err
	}

	answers, err := rt.Answers(cmd.Context())
	if err != nil {
		return withHint("start answer engine", err)
	}
	answer, err := answers.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return withHint("answer failed", err)
	}

	switch {
	case askJSON:
		return outputAskJSON(cmd, answer)
	case isTerminal(cmd.OutOrStdout()):
		outputAskStyled(cmd, answer)
	default:
		outputAskPlain(cmd, answer)
	}
	return nil
}

func outputAskJSON(cmd *cobra.Command, a *domain.Answer) error {
	out := askOutput{
		Answer:        a.Text,
		Emergency:     a.Emergency,
		Fallback:      a.Fallback,
		Clarification: a.Clarification,
		Citations:     make([]string, 0, len(a.Citations)),
	}
	for _, c := range a.Citations {
		out.Citations = append(out.Citations, c.String())
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskStyled(cmd *cobra.Command, a *domain.Answer) {
	s := styles.DefaultStyles()
	if a.Emergency {
		cmd.Println(s.Emergency.Render("⚠ НЕБЕЗПЕКА"))
	}
	cmd.Println(s.RenderMarkup(a.Text))
}

func outputAskPlain(cmd *cobra.Command, a *domain.Answer) {
	cmd.Println(plainText(a.Text))
}

// plainText drops the <b> markup and decodes entities.
func plainText(s string) string {
	s = strings.NewReplacer("<b>", "", "</b>", "").Replace(s)
	return html.UnescapeString(s)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
