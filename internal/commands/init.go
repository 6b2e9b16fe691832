package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendboard/internal/categorize"
	"github.com/cleared-dev/spendboard/internal/config"
	"github.com/cleared-dev/spendboard/internal/gitops"
	"github.com/cleared-dev/spendboard/internal/importer"
)

func newInitCommand() *cobra.Command {
	var name string
	var layout string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new spendboard project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, layout)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "card holder name shown on the dashboard (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&layout, "layout", importer.DefaultLayout, "statement layout (truist or chase)")

	return cmd
}

func runInit(dir, name, layout string) error {
	if importer.DefaultRegistry().Get(layout) == nil {
		return fmt.Errorf("unknown layout %q", layout)
	}

	for _, d := range []string{"import", "data", "logs", "rules"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Card.HolderName = name
	cfg.Input.Layout = layout
	cfg.Rules.Path = filepath.Join("rules", "categories.yaml")
	cfg.Git.AutoCommit = true
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Editable copy of the built-in keyword table.
	if err := os.WriteFile(filepath.Join(dir, cfg.Rules.Path), categorize.DefaultTable(), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	gitignore := "import/*.csv\nlogs/\n*.tmp\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	hash, err := gitops.CommitAll(dir, "init: Initialize spendboard project", cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Printf("Initialized spendboard project at %s (%s)\n", dir, hash)
	return nil
}
