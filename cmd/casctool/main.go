// casctool is a headless CLI for working with CARC content archives.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cascbox/cascview/internal/config"
	"github.com/cascbox/cascview/internal/export"
	"github.com/cascbox/cascview/internal/logger"
	"github.com/cascbox/cascview/internal/notify"
	"github.com/cascbox/cascview/pkg/casc"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.DefaultOptions(cfg.Logging.Level, cfg.Logging.LogFile))
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch command := args[0]; command {
	case "info":
		cmdInfo(cfg)
	case "list", "ls":
		cmdList(cfg, args[1:])
	case "extract", "x":
		cmdExtract(cfg, args[1:])
	case "export":
		cmdExport(cfg, args[1:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`casctool - CARC content archive utility

Usage:
  casctool [flags] <command> [args]

Commands:
  info                       Show archive information
  list [pattern]             List named assets (glob or substring)
  extract <name> [out_dir]   Extract one asset to a directory
  export <name...>           Batch-export assets, mirroring archive paths

Flags:
  -archive data/base.arc,data/patch.arc   Archive files (comma separated)
  -listfile data/listfile.csv             Listfile path
  -out export                             Export output directory
  -format raw                             Export output format

Examples:
  casctool -archive data/base.arc info
  casctool list "*.mdx"
  casctool extract creature/bear/bear.mdx ./output
  casctool export creature/bear/bear.mdx creature/wolf/wolf.mdx`)
}

func openStore(cfg *config.Config) *casc.Store {
	store, err := casc.OpenStore(cfg.Storage.Archives, cfg.Storage.Listfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return store
}

func cmdInfo(cfg *config.Config) {
	store := openStore(cfg)
	defer store.Close()

	names := store.Names()

	extCount := make(map[string]int)
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" {
			ext = "(no ext)"
		}
		extCount[ext]++
	}

	fmt.Printf("Archives: %s\n", strings.Join(cfg.Storage.Archives, ", "))
	fmt.Printf("Assets:   %d\n", len(names))
	fmt.Println()
	fmt.Println("Assets by type:")

	type extStat struct {
		ext   string
		count int
	}
	var stats []extStat
	for ext, count := range extCount {
		stats = append(stats, extStat{ext, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].count > stats[j].count
	})
	for _, s := range stats {
		fmt.Printf("  %-10s %d\n", s.ext, s.count)
	}
}

func cmdList(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N assets (0 = all)")
	fs.Parse(args)

	store := openStore(cfg)
	defer store.Close()

	pattern := ""
	if fs.NArg() > 0 {
		pattern = strings.ToLower(fs.Arg(0))
	}

	count := 0
	for _, name := range store.Names() {
		if pattern != "" {
			matched, _ := filepath.Match(pattern, filepath.Base(name))
			if !matched && !strings.Contains(name, pattern) {
				continue
			}
		}
		fmt.Println(name)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d assets matched)\n", count)
	}
}

func cmdExtract(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: casctool extract <name> [out_dir]")
		os.Exit(1)
	}

	name := args[0]
	outputDir := "."
	if len(args) > 1 {
		outputDir = args[1]
	}

	store := openStore(cfg)
	defer store.Close()

	data, err := store.ReadByName(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", name, err)
		os.Exit(1)
	}

	outputPath := filepath.Join(outputDir, filepath.Base(casc.NormalizeName(name)))
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
}

func cmdExport(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: casctool export <name...>")
		os.Exit(1)
	}

	store := openStore(cfg)
	defer store.Close()

	exporter := export.NewExporter(store, notify.NewLogNotifier(logger.Log), cfg.Export.OutputDir,
		export.WithFormat(cfg.Export.Format),
		export.WithWorkers(cfg.Export.Workers),
		export.WithLogger(logger.Named("export")))

	items := exporter.ExportBatch(args, export.ModeRemote)

	failed := 0
	for _, item := range items {
		if item.Outcome == export.OutcomeSuccess {
			fmt.Printf("  ok     %s -> %s\n", item.Source, item.Target)
		} else {
			failed++
			fmt.Printf("  FAILED %s: %s\n", item.Source, item.Reason)
		}
	}
	fmt.Printf("\n%d exported, %d failed\n", len(items)-failed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}
