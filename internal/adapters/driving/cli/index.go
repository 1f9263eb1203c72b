package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

var indexInfoJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and inspect the vector index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build [corpus-dir]",
	Short: "Chunk, embed and persist the corpus",
	Long: `Reads every *.txt file in corpus-dir (default "corpus") in lexical order,
splits it into token-bounded chunks, embeds them and atomically replaces
the persisted index. On any failure the previous index stays in place.

Running servers pick up the new index without a restart.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndexBuild,
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the persisted index manifest",
	RunE:  runIndexInfo,
}

func init() {
	indexInfoCmd.Flags().BoolVar(&indexInfoJSON, "json", false, "output the manifest as JSON")
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexInfoCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	rt, err := runtimeApp()
	if err != nil {
		return err
	}

	dir := DefaultCorpusDir
	if len(args) == 1 {
		dir = args[0]
	}

	indexer, err := rt.Indexer(cmd.Context())
	if err != nil {
		return err
	}
	m, err := indexer.Build(cmd.Context(), dir)
	if err != nil {
		return withHint("index build failed", err)
	}

	cmd.Printf("Indexed %d chunks from %d document(s)\n", m.ChunkCount, len(m.Documents))
	printManifest(cmd, m)
	return nil
}

func runIndexInfo(cmd *cobra.Command, _ []string) error {
	rt, err := runtimeApp()
	if err != nil {
		return err
	}

	m, err := rt.Manifest(cmd.Context())
	if err != nil {
		return withHint("read index", err)
	}

	if indexInfoJSON {
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal manifest: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printManifest(cmd, m)
	return nil
}

func printManifest(cmd *cobra.Command, m *domain.Manifest) {
	cmd.Printf("  Build: %s\n", m.BuildID)
	cmd.Printf("  Chunks: %d\n", m.ChunkCount)
	cmd.Printf("  Embedding: %s (%d dimensions)\n", m.EmbeddingModel, m.Dimensions)
	cmd.Printf("  Chunking: %d tokens (%s), %d words overlap\n", m.MaxTokens, m.Tokenizer, m.OverlapTokens)
	if len(m.Documents) == 0 {
		return
	}
	cmd.Println("  Documents:")
	for _, d := range m.Documents {
		cmd.Printf("    %s (%d chunks)\n", d.Name, d.Chunks)
	}
}
