package batch

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/polyglot/internal/apperrors"
	"codeberg.org/snonux/polyglot/internal/language"
	"codeberg.org/snonux/polyglot/internal/pacing"
	"codeberg.org/snonux/polyglot/internal/progress"
	"codeberg.org/snonux/polyglot/internal/table"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// Default retry backoff bounds
const (
	DefaultBackoffBase = 1 * time.Second
	DefaultBackoffMax  = 20 * time.Second
)

// Options configures an Orchestrator
type Options struct {
	// SystemInstruction is sent with every prompt; empty means the default persona
	SystemInstruction string
	// MaxAttempts per cell; values below 1 mean a single attempt
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// Reporter turns counters into progress events; nil uses a cumulative reporter
	Reporter *progress.Reporter
	// OnProgress receives one event per finished cell
	OnProgress func(progress.Event)

	Logger zerolog.Logger
}

// Stats summarizes a run
type Stats struct {
	Total      int
	Completed  int
	Translated int
	Skipped    int
	Failed     int
	Calls      int
	Elapsed    time.Duration
}

// Orchestrator translates tables cell by cell
type Orchestrator struct {
	translator translation.Translator
	pacer      pacing.Policy
	opts       Options

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an orchestrator. A nil pacer means no pacing.
func New(translator translation.Translator, pacer pacing.Policy, opts Options) *Orchestrator {
	if pacer == nil {
		pacer = pacing.None{}
	}
	if opts.SystemInstruction == "" {
		opts.SystemInstruction = translation.DefaultSystemInstruction
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.BackoffMax < opts.BackoffBase {
		opts.BackoffMax = max(DefaultBackoffMax, opts.BackoffBase)
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.NewReporter(nil)
	}

	return &Orchestrator{
		translator: translator,
		pacer:      pacer,
		opts:       opts,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Run translates every row of tbl into every language in langs and returns
// the augmented copy. The input table is not modified.
//
// On cancellation the partially filled table is returned together with the
// context error; cells not reached are left empty.
func (o *Orchestrator) Run(ctx context.Context, tbl *table.Table, langs []language.Language) (*table.Table, Stats, error) {
	out := tbl.Clone()
	langs = dedupe(langs)

	var stats Stats
	if len(langs) == 0 {
		return out, stats, nil
	}

	// Fail before any task when a prompt column is missing
	prompts := make([]string, len(langs))
	for i, lang := range langs {
		prompts[i] = lang.PromptColumn()
	}
	if err := out.Require(prompts...); err != nil {
		return tbl, stats, err
	}

	for _, lang := range langs {
		out.ResetColumn(lang.TranslationColumn())
	}

	stats.Total = out.Len() * len(langs)
	start := o.now()
	log := o.opts.Logger

	log.Info().
		Int("rows", out.Len()).
		Strs("languages", names(langs)).
		Int("tasks", stats.Total).
		Msg("Starting translation run")

	for _, lang := range langs {
		promptCol := lang.PromptColumn()
		targetCol := lang.TranslationColumn()

		for row := 0; row < out.Len(); row++ {
			if err := ctx.Err(); err != nil {
				return o.abort(out, stats, start, err)
			}

			prompt := out.Get(row, promptCol)
			if prompt.IsBlank() {
				out.Set(row, targetCol, table.StringCell(""))
				stats.Skipped++
			} else {
				res, calls := o.translateCell(ctx, prompt.String())
				stats.Calls += calls
				if ctx.Err() != nil && res.Failed() {
					// The interrupted call is not recorded
					return o.abort(out, stats, start, ctx.Err())
				}

				out.Set(row, targetCol, table.StringCell(res.String()))
				if res.Failed() {
					stats.Failed++
					kind, _ := apperrors.KindOf(res.Err)
					log.Warn().
						Err(res.Err).
						Str("language", lang.Name).
						Int("row", row).
						Str("kind", string(kind)).
						Msg("Translation failed")
				} else {
					stats.Translated++
					log.Debug().
						Str("language", lang.Name).
						Int("row", row).
						Msg("Translated cell")
				}
			}

			stats.Completed++
			o.emit(stats.Completed, stats.Total, o.now().Sub(start))
		}
	}

	stats.Elapsed = o.now().Sub(start)
	if stats.Total == 0 {
		o.emit(0, 0, stats.Elapsed)
	}
	log.Info().
		Int("translated", stats.Translated).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Dur("elapsed", stats.Elapsed).
		Msg("Translation run finished")

	return out, stats, nil
}

// translateCell performs one task, retrying retryable failures when allowed.
// It returns the final result and the number of calls made.
func (o *Orchestrator) translateCell(ctx context.Context, prompt string) (translation.Result, int) {
	var res translation.Result
	calls := 0

	for attempt := 1; ; attempt++ {
		if err := o.pacer.Throttle(ctx); err != nil {
			return translation.Result{Err: err}, calls
		}

		res = o.translator.Translate(ctx, prompt, o.opts.SystemInstruction)
		calls++
		o.pacer.Observe(res.Err)

		retry, backoff := o.retryDecision(ctx, res.Err, attempt)
		if !retry {
			return res, calls
		}

		o.opts.Logger.Debug().
			Err(res.Err).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Retrying translation")

		if err := o.sleep(ctx, backoff); err != nil {
			return translation.Result{Err: err}, calls
		}
	}
}

func (o *Orchestrator) retryDecision(ctx context.Context, err error, attempt int) (bool, time.Duration) {
	if err == nil || attempt >= o.opts.MaxAttempts {
		return false, 0
	}
	if ctx.Err() != nil {
		return false, 0
	}
	if !apperrors.IsRetryable(err) {
		return false, 0
	}

	backoff := o.opts.BackoffBase << (attempt - 1)
	if apperrors.IsRateLimit(err) {
		backoff *= 2
	}
	if backoff > o.opts.BackoffMax || backoff <= 0 {
		backoff = o.opts.BackoffMax
	}
	jitter := time.Duration(rand.Int63n(int64(o.opts.BackoffBase)))
	return true, backoff + jitter
}

func (o *Orchestrator) abort(out *table.Table, stats Stats, start time.Time, err error) (*table.Table, Stats, error) {
	stats.Elapsed = o.now().Sub(start)
	o.opts.Logger.Warn().
		Err(err).
		Int("completed", stats.Completed).
		Int("total", stats.Total).
		Msg("Translation run cancelled")
	return out, stats, err
}

func (o *Orchestrator) emit(completed, total int, elapsed time.Duration) {
	e := o.opts.Reporter.Report(completed, total, elapsed)
	if o.opts.OnProgress != nil {
		o.opts.OnProgress(e)
	}
}

func dedupe(langs []language.Language) []language.Language {
	seen := make(map[string]bool, len(langs))
	result := make([]language.Language, 0, len(langs))
	for _, l := range langs {
		if seen[l.Name] {
			continue
		}
		seen[l.Name] = true
		result = append(result, l)
	}
	return result
}

func names(langs []language.Language) []string {
	result := make([]string, len(langs))
	for i, l := range langs {
		result[i] = l.Name
	}
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
