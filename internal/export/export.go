// Package export implements the batch export pipeline: per-item fetch,
// native-format passthrough to disk, independent outcomes, one summary
// signal after the whole batch resolves.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cascbox/cascview/internal/notify"
)

// Mode selects where item sources are fetched from.
type Mode int

const (
	// ModeRemote fetches items from the content store by logical name.
	ModeRemote Mode = iota
	// ModeLocal reads items from disk paths, e.g. dropped files.
	ModeLocal
)

// Outcome is an item's terminal state.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Item tracks one asset through the batch. Items are finalized
// independently and never retried.
type Item struct {
	Source  string
	Target  string
	Outcome Outcome
	Reason  string // set when Outcome is OutcomeFailed
}

// Summary aggregates a finished batch.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Source resolves a logical asset name to raw bytes.
type Source interface {
	ReadByName(name string) ([]byte, error)
}

// NativeFormat is the passthrough output format: source bytes written
// unchanged. Every other requested format is an unimplemented
// conversion and fails the item explicitly.
const NativeFormat = "raw"

// Exporter runs export batches against one store and output directory.
type Exporter struct {
	store     Source
	outputDir string
	format    string
	workers   int
	notifier  notify.Notifier
	log       *zap.Logger
}

// ExporterOption customizes an Exporter.
type ExporterOption func(*Exporter)

// WithFormat sets the requested output format.
func WithFormat(format string) ExporterOption {
	return func(e *Exporter) { e.format = format }
}

// WithWorkers bounds batch concurrency.
func WithWorkers(n int) ExporterOption {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(log *zap.Logger) ExporterOption {
	return func(e *Exporter) { e.log = log }
}

// NewExporter creates an Exporter writing under outputDir.
func NewExporter(store Source, notifier notify.Notifier, outputDir string, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		store:     store,
		outputDir: outputDir,
		format:    NativeFormat,
		workers:   4,
		notifier:  notifier,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportBatch processes every source independently and returns all
// items in terminal states. One item's failure never aborts the rest.
// The summary notification fires exactly once, after the last item
// resolves, regardless of individual failures.
func (e *Exporter) ExportBatch(sources []string, mode Mode) []Item {
	items := make([]Item, len(sources))
	for i, src := range sources {
		items[i] = Item{Source: src}
	}

	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i := range items {
		g.Go(func() error {
			e.exportOne(&items[i], mode)
			return nil
		})
	}
	// Items report failure through their outcome, never through errors.
	_ = g.Wait()

	summary := Summary{Total: len(items)}
	for _, item := range items {
		if item.Outcome == OutcomeSuccess {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	level := notify.LevelInfo
	if summary.Failed > 0 {
		level = notify.LevelWarn
	}
	e.notifier.Notify(level, fmt.Sprintf("Export complete: %d succeeded, %d failed",
		summary.Succeeded, summary.Failed))
	e.log.Info("export batch finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))

	return items
}

func (e *Exporter) exportOne(item *Item, mode Mode) {
	target, err := TargetPath(e.outputDir, item.Source, mode)
	if err != nil {
		e.failItem(item, err.Error())
		return
	}
	item.Target = target

	if e.format != NativeFormat {
		e.failItem(item, fmt.Sprintf("conversion to %s is not implemented", e.format))
		return
	}

	data, err := e.fetch(item.Source, mode)
	if err != nil {
		e.failItem(item, err.Error())
		return
	}

	if err := writeFile(target, data); err != nil {
		e.failItem(item, err.Error())
		return
	}

	item.Outcome = OutcomeSuccess
	e.log.Debug("exported asset",
		zap.String("source", item.Source), zap.String("target", target))
}

func (e *Exporter) fetch(source string, mode Mode) ([]byte, error) {
	if mode == ModeLocal {
		return os.ReadFile(source)
	}
	return e.store.ReadByName(source)
}

func (e *Exporter) failItem(item *Item, reason string) {
	item.Outcome = OutcomeFailed
	item.Reason = reason
	e.log.Warn("export item failed",
		zap.String("source", item.Source), zap.String("reason", reason))
}

func writeFile(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}
