package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendboard/internal/buildinfo"
	"github.com/cleared-dev/spendboard/internal/categorize"
	"github.com/cleared-dev/spendboard/internal/config"
	"github.com/cleared-dev/spendboard/internal/logger"
	"github.com/cleared-dev/spendboard/internal/store"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "spendboard",
		Short:   "Bank statement to dashboard converter",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to the config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format, console or json (overrides config)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))
	rootCmd.AddCommand(newVerifyCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newCardsCommand(opts))

	return rootCmd
}

// setup loads the config and returns it with a context carrying the
// configured logger.
func (o *globalOptions) setup(ctx context.Context) (*config.Config, context.Context, zerolog.Logger, error) {
	absPath, err := filepath.Abs(o.configPath)
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("resolving config path: %w", err)
	}
	cfg, err := config.LoadOrDefault(absPath)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}

	log, err := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	return cfg, logger.WithContext(ctx, log), log, nil
}

// classifierFor builds the classifier from the configured table, or the
// built-in one.
func classifierFor(cfg *config.Config) (*categorize.Classifier, error) {
	if cfg.Rules.Path == "" {
		return categorize.NewDefault(), nil
	}
	rules, err := categorize.LoadRules(cfg.Resolve(cfg.Rules.Path))
	if err != nil {
		return nil, err
	}
	return categorize.New(rules), nil
}

// documentStore returns the store for outputFlag, or for the configured
// output when the flag is empty.
func documentStore(cfg *config.Config, outputFlag string) *store.FileStore {
	if outputFlag != "" {
		return store.NewFileStore(outputFlag)
	}
	return store.NewFileStore(cfg.Resolve(cfg.Output.Path))
}
