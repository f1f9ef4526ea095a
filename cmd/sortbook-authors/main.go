package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sortbook/authors/internal/authority"
	"github.com/sortbook/authors/internal/foundation/errors"
	"github.com/sortbook/authors/internal/pipeline"
)

// Set at build time with: -ldflags "-X main.version=1.0.0"
var version = "dev"

// CLI is the root command: a single-verb pipeline, so there is no
// subcommand tree, just a flat flag set.
type CLI struct {
	Root              string           `help:"Directory whose immediate children are author folders." default:"output/sorted_books"`
	DB                string           `help:"Authority store location." default:"data/database/openlibrary.sqlite3"`
	CSV               string           `help:"CSV output path." default:"data/authors.csv"`
	MinFiles          int              `name:"min-files" help:"Entries with fewer files are excluded from group merging." default:"0"`
	ProbableThreshold float64          `name:"probable-threshold" help:"Minimum average score for a probable identifier to drive merging." default:"0.90"`
	DryRun            bool             `name:"dry-run" help:"Log planned renames/merges without mutating the filesystem."`
	Verbose           bool             `short:"v" help:"Enable verbose logging."`
	Version           kong.VersionFlag `name:"version" help:"Show version and exit."`
}

// AfterApply installs the process-default slog handler before Run executes.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (c *CLI) Run() error {
	logger := slog.Default()

	if c.Root == "" {
		return errors.ConfigError("--root is required").Build()
	}
	if _, err := os.Stat(c.Root); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "root directory is not accessible").
			WithContext("root", c.Root).Build()
	}

	store, err := authority.OpenSQLiteStore(c.DB)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("failed to close authority store", "error", cerr)
		}
	}()

	cfg := pipeline.Config{
		Root:              c.Root,
		CSVPath:           c.CSV,
		MinFiles:          c.MinFiles,
		ProbableThreshold: c.ProbableThreshold,
		DryRun:            c.DryRun,
	}

	summary, err := pipeline.Run(context.Background(), cfg, store, logger)
	if err != nil {
		return err
	}

	logger.Info("consolidation run complete",
		"entries_scanned", summary.EntriesScanned,
		"exact_matches", summary.ExactMatches,
		"probable_suggested", summary.ProbableSuggested,
		"groups_merged", summary.GroupsMerged,
		"non_empty_residues", summary.NonEmptyResidues,
		"dry_run", c.DryRun)

	return nil
}

func main() {
	cli := &CLI{}
	parser := kong.Parse(cli,
		kong.Description("Consolidate a tree of author folders against a local OpenLibrary-derived authority database."),
		kong.Vars{"version": version},
	)

	errorAdapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())

	if err := parser.Run(); err != nil {
		errorAdapter.HandleError(err)
	}
}
