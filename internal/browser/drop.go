package browser

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cascbox/cascview/internal/export"
	"github.com/cascbox/cascview/internal/notify"
)

// BatchExporter runs a batch over local file paths.
type BatchExporter interface {
	ExportBatch(sources []string, mode export.Mode) []export.Item
}

// DropHandler accepts files dropped onto the shell and forwards them
// to the export pipeline in local mode. Files with unaccepted
// extensions are rejected up front with a notification.
type DropHandler struct {
	Extensions []string // accepted, including the dot
	Prompt     string   // shown by the shell while a drag hovers

	exporter BatchExporter
	notifier notify.Notifier
	log      *zap.Logger
}

// NewDropHandler registers accepted extensions against an exporter.
func NewDropHandler(exporter BatchExporter, notifier notify.Notifier, extensions []string, log *zap.Logger) *DropHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DropHandler{
		Extensions: extensions,
		Prompt:     "Drop asset files to export them",
		exporter:   exporter,
		notifier:   notifier,
		log:        log,
	}
}

// Accept processes a dropped file list. Accepted files go to the export
// pipeline as one local-mode batch; the returned items mirror it.
func (h *DropHandler) Accept(paths []string) []export.Item {
	var accepted []string
	for _, p := range paths {
		if h.accepts(p) {
			accepted = append(accepted, p)
		} else {
			h.notifier.Notify(notify.LevelWarn,
				"Skipping "+filepath.Base(p)+": unsupported file type")
		}
	}
	if len(accepted) == 0 {
		return nil
	}

	h.log.Info("processing dropped files", zap.Int("count", len(accepted)))
	return h.exporter.ExportBatch(accepted, export.ModeLocal)
}

func (h *DropHandler) accepts(path string) bool {
	if len(h.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range h.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
