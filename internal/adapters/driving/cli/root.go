// Package cli provides the weldsafe command-line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

// version is set at build time.
var version = "dev"

var verbose bool

// Runtime is the composition root as seen by commands. Services are
// built on request so each command only needs the providers it uses.
type Runtime interface {
	Settings() driving.SettingsService
	Config() *domain.AppSettings
	Corpus() driving.CorpusService
	Manifest(ctx context.Context) (*domain.Manifest, error)
	Indexer(ctx context.Context) (driving.IndexService, error)
	Answers(ctx context.Context) (driving.AnswerService, error)
	Conversation(ctx context.Context) (driving.ConversationService, error)
	Profiles(ctx context.Context) (driving.ProfileService, error)
	Healthy() bool
	Watch(ctx context.Context) error
}

// app is injected by main before Execute.
var app Runtime

// errNotConfigured is returned when a command runs before SetRuntime.
var errNotConfigured = errors.New("weldsafe runtime not configured")

var rootCmd = &cobra.Command{
	Use:   "weldsafe",
	Short: "Welding safety answers from Ukrainian standards",
	Long: `weldsafe answers occupational-safety questions for welders in Ukrainian,
grounded in a corpus of safety standards and instructions.

Typical workflow:
  weldsafe prepare ./sources ./corpus   # convert .docx/.pdf/.txt to clean text
  weldsafe index build ./corpus         # chunk, embed and persist the index
  weldsafe ask "Як безпечно відкривати балон?"
  weldsafe serve                        # HTTP chat gateway`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic output to stderr")
}

// SetRuntime injects the composition root.
func SetRuntime(r Runtime) {
	app = r
}

// SetVersion sets the version reported by 'weldsafe version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runtimeApp() (Runtime, error) {
	if app == nil {
		return nil, errNotConfigured
	}
	return app, nil
}
