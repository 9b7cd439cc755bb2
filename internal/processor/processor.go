package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/polyglot/internal/archive"
	"codeberg.org/snonux/polyglot/internal/batch"
	"codeberg.org/snonux/polyglot/internal/cli"
	"codeberg.org/snonux/polyglot/internal/language"
	"codeberg.org/snonux/polyglot/internal/pacing"
	"codeberg.org/snonux/polyglot/internal/progress"
	"codeberg.org/snonux/polyglot/internal/sheet"
	"codeberg.org/snonux/polyglot/internal/table"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// progressEvery is how often a non-terminal progress sink prints a line
const progressEvery = 10

// Processor handles one translation run
type Processor struct {
	settings   cli.Settings
	translator translation.Translator
	pacer      pacing.Policy
	estimator  progress.Estimator
	logger     zerolog.Logger

	stdout io.Writer
	stderr io.Writer
}

// Result describes a finished run
type Result struct {
	OutputPath string
	Artifact   sheet.Artifact
	Stats      batch.Stats
}

// NewProcessor creates a processor. stdout receives previews and the summary,
// stderr receives progress lines.
func NewProcessor(settings cli.Settings, translator translation.Translator, logger zerolog.Logger, stdout, stderr io.Writer) (*Processor, error) {
	pacer, err := pacing.New(settings.Pacing)
	if err != nil {
		return nil, err
	}

	estimator, err := progress.NewEstimator(settings.ETA)
	if err != nil {
		return nil, err
	}

	return &Processor{
		settings:   settings,
		translator: translator,
		pacer:      pacer,
		estimator:  estimator,
		logger:     logger,
		stdout:     stdout,
		stderr:     stderr,
	}, nil
}

// ProcessFile translates the spreadsheet at inputPath and writes the artifact.
// A cancelled run still writes the partially translated table and returns
// the context error.
func (p *Processor) ProcessFile(ctx context.Context, inputPath string) (*Result, error) {
	tbl, err := sheet.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	langs, err := p.settings.SelectedLanguages()
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("input", filepath.Base(inputPath)).
		Int("rows", tbl.Len()).
		Msg("Loaded input")

	return p.Process(ctx, tbl, langs)
}

// Process translates an already loaded table
func (p *Processor) Process(ctx context.Context, tbl *table.Table, langs []language.Language) (*Result, error) {
	if p.settings.Preview > 0 {
		fmt.Fprintln(p.stdout, "Input preview:")
		if err := table.Fprint(p.stdout, tbl, p.settings.Preview); err != nil {
			return nil, err
		}
	}

	sink := progress.NewConsoleSink(p.stderr, progressEvery)
	orchestrator := batch.New(p.translator, p.pacer, batch.Options{
		SystemInstruction: p.settings.SystemInstruction,
		MaxAttempts:       p.settings.MaxAttempts,
		Reporter:          progress.NewReporter(p.estimator),
		OnProgress:        sink.Handle,
		Logger:            p.logger,
	})

	out, stats, runErr := orchestrator.Run(ctx, tbl, langs)
	cancelled := runErr != nil && (errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded))
	if runErr != nil && !cancelled {
		return nil, runErr
	}

	if p.settings.Preview > 0 {
		fmt.Fprintln(p.stdout, "\nTranslated preview:")
		if err := table.Fprint(p.stdout, out, p.settings.Preview); err != nil {
			return nil, err
		}
	}

	artifact, err := sheet.Assemble(out, p.settings.Format)
	if err != nil {
		return nil, err
	}

	outputPath, err := p.writeArtifact(artifact)
	if err != nil {
		return nil, err
	}

	result := &Result{OutputPath: outputPath, Artifact: artifact, Stats: stats}
	p.printSummary(result, cancelled)

	if cancelled {
		return result, runErr
	}
	return result, nil
}

// writeArtifact stores the artifact. An empty output path means the working
// directory; a directory receives the artifact under its fixed name.
func (p *Processor) writeArtifact(artifact sheet.Artifact) (string, error) {
	path := p.settings.Output
	if path == "" {
		path = artifact.Name
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, artifact.Name)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if p.settings.Archive {
		archived, err := archive.ArchiveExisting(path, time.Now())
		if err != nil {
			return "", err
		}
		if archived != "" {
			fmt.Fprintf(p.stdout, "Archived previous output to %s\n", archived)
		}
	}

	if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}

	p.logger.Info().
		Str("path", path).
		Str("content_type", artifact.ContentType).
		Int("bytes", len(artifact.Data)).
		Msg("Wrote artifact")

	return path, nil
}

func (p *Processor) printSummary(r *Result, cancelled bool) {
	fmt.Fprintf(p.stdout, "\n=== Translation Summary ===\n")
	if cancelled {
		fmt.Fprintf(p.stdout, "Run cancelled after %d of %d cells\n", r.Stats.Completed, r.Stats.Total)
	}
	fmt.Fprintf(p.stdout, "Cells: %d\n", r.Stats.Total)
	fmt.Fprintf(p.stdout, "Translated: %d\n", r.Stats.Translated)
	fmt.Fprintf(p.stdout, "Skipped (blank prompt): %d\n", r.Stats.Skipped)
	if r.Stats.Failed > 0 {
		fmt.Fprintf(p.stdout, "Failed: %d\n", r.Stats.Failed)
	}
	fmt.Fprintf(p.stdout, "API calls: %d\n", r.Stats.Calls)
	fmt.Fprintf(p.stdout, "Elapsed: %s\n", progress.FormatDuration(r.Stats.Elapsed))
	fmt.Fprintf(p.stdout, "Output: %s (%s, %s)\n", r.OutputPath, r.Artifact.ContentType,
		humanize.Bytes(uint64(len(r.Artifact.Data))))
}

// PrintLanguages lists the catalog, one language per line
func PrintLanguages(w io.Writer, catalog *language.Catalog) {
	fmt.Fprintln(w, "Available languages:")
	for _, l := range catalog.Languages() {
		fmt.Fprintf(w, "  %-12s input column %q\n", l.Name, l.PromptColumn())
	}
}
