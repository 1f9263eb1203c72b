package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

// DefaultCorpusDir is where prepared text is written and read from.
const DefaultCorpusDir = "corpus"

var prepareCmd = &cobra.Command{
	Use:   "prepare <source-dir> [corpus-dir]",
	Short: "Convert source documents to clean text",
	Long: `Walks source-dir and converts every .docx, .pdf, .txt and .md file into
<name>_clean.txt in corpus-dir (default "corpus"). Whitespace is collapsed
and spaces before punctuation are removed.

No AI provider is needed for this step.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	rt, err := runtimeApp()
	if err != nil {
		return err
	}

	dst := DefaultCorpusDir
	if len(args) == 2 {
		dst = args[1]
	}

	report, err := rt.Corpus().Prepare(cmd.Context(), args[0], dst)
	if err != nil {
		return withHint("prepare failed", err)
	}

	cmd.Printf("Prepared %d file(s) into %s\n", len(report.Written), dst)
	printReasons(cmd, "Skipped", report.Skipped)
	printReasons(cmd, "Failed", report.Failed)
	return nil
}

func printReasons(cmd *cobra.Command, title string, reasons map[string]string) {
	if len(reasons) == 0 {
		return
	}
	names := make([]string, 0, len(reasons))
	for name := range reasons {
		names = append(names, name)
	}
	sort.Strings(names)

	cmd.Printf("\n%s (%d):\n", title, len(names))
	for _, name := range names {
		cmd.Printf("  %s: %s\n", name, reasons[name])
	}
}
