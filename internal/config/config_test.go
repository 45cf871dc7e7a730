package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Format != "raw" {
		t.Errorf("default export format: got %q, want raw", cfg.Export.Format)
	}
	if cfg.Export.Workers <= 0 {
		t.Errorf("default workers must be positive, got %d", cfg.Export.Workers)
	}
	if cfg.Viewer.FOV <= 0 {
		t.Errorf("default FOV must be positive, got %v", cfg.Viewer.FOV)
	}
	if !cfg.Filters[".mdx"] {
		t.Error("models should be visible by default")
	}
}

func TestLoadFromFile_Merge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascview.yaml")
	content := `
export:
  output_dir: /tmp/dump
  format: obj
viewer:
  auto_preview: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Export.OutputDir != "/tmp/dump" {
		t.Errorf("output dir: got %q", cfg.Export.OutputDir)
	}
	if cfg.Export.Format != "obj" {
		t.Errorf("format: got %q", cfg.Export.Format)
	}
	if cfg.Viewer.AutoPreview {
		t.Error("auto_preview should be overridden to false")
	}
	// Untouched values keep their defaults.
	if cfg.Viewer.Width != 1280 {
		t.Errorf("width should keep default, got %d", cfg.Viewer.Width)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("{not valid yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveTo_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cascview.yaml")

	cfg := Default()
	cfg.Export.OutputDir = "exported-assets"
	cfg.Filters[".blp"] = false

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if loaded.Export.OutputDir != "exported-assets" {
		t.Errorf("roundtrip output dir: got %q", loaded.Export.OutputDir)
	}
	if loaded.Filters[".blp"] {
		t.Error("roundtrip filter toggle lost")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("a.arc, b.arc,,c.arc ")
	want := []string{"a.arc", "b.arc", "c.arc"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
