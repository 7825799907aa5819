// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/souqline/souqline/go/telemetry/logger"
	"github.com/souqline/souqline/go/telemetry/pkg/buildinfo"
	"github.com/souqline/souqline/go/telemetry/pkg/cli"
	"github.com/souqline/souqline/go/telemetry/pkg/confopt"
	"github.com/souqline/souqline/go/telemetry/pkg/instrument"
	"github.com/souqline/souqline/go/telemetry/pkg/monitoring"
	"github.com/souqline/souqline/go/telemetry/pkg/procstat"
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(s string, args ...interface{}) {}))

	opts := parseCLI()

	if opts.Version {
		fmt.Printf("%s, version: %s\n", cli.Name, buildinfo.Version)
		return
	}

	if opts.Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	os.Exit(run(context.Background(), opts, os.Stdout, os.Stderr))
}

func parseCLI() *cli.Option {
	opt, err := cli.Parse(os.Args)
	if err != nil {
		if cli.IsHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	return opt
}

type scrapeFile struct {
	path    string
	data    []byte
	modTime time.Time
}

func run(ctx context.Context, opts *cli.Option, stdout, stderr io.Writer) int {
	log := logger.New().With("component", "monitorctl")
	log.Debugf("%s: %s", cli.Name, buildinfo.Info())

	cfg, err := monitoring.LoadConfig(opts.Config)
	if err != nil {
		log.Errorf("load config: %v", err)
		return 1
	}
	if opts.Window > 0 {
		cfg.SeriesWindow = confopt.Duration(opts.Window)
	}
	paths, err := expandPaths(opts.Files)
	if err != nil {
		log.Errorf("expand scrape files: %v", err)
		return 1
	}
	if len(paths) == 0 {
		log.Error("no scrape files given")
		return 1
	}

	reg := instrument.NewRegistry(procstat.New(procstat.Config{}))
	in := instrument.New(reg)

	scrapes, err := loadScrapes(ctx, in, paths)
	if err != nil {
		log.Errorf("load scrapes: %v", err)
		return 1
	}

	a := monitoring.NewAnalyzer(cfg)
	var kept int
	for _, s := range scrapes {
		if a.Ingest(s.data, nil, s.modTime) {
			kept++
		}
	}
	log.Infof("loaded %d scrape files, %d kept in history", len(scrapes), kept)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a.Report(time.Now())); err != nil {
		log.Errorf("write report: %v", err)
		return 1
	}

	if opts.SelfMetrics {
		if err := reg.Render(stderr); err != nil {
			log.Errorf("write self metrics: %v", err)
			return 1
		}
	}

	return 0
}

// expandPaths resolves glob patterns (including **) to files. Arguments
// without pattern characters are kept as given.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	for _, arg := range args {
		matches := []string{arg}
		if strings.ContainsAny(arg, "*?[{") {
			var err error
			if matches, err = doublestar.FilepathGlob(arg, doublestar.WithFilesOnly()); err != nil {
				return nil, fmt.Errorf("pattern '%s': %w", arg, err)
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	return paths, nil
}

// loadScrapes reads files concurrently and returns them in capture order.
func loadScrapes(ctx context.Context, in *instrument.Instrumenter, paths []string) ([]scrapeFile, error) {
	scrapes, err := iter.MapErr(paths, func(path *string) (scrapeFile, error) {
		return readScrape(ctx, in, *path)
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(scrapes, func(a, b scrapeFile) int {
		return a.modTime.Compare(b.modTime)
	})

	return scrapes, nil
}

func readScrape(ctx context.Context, in *instrument.Instrumenter, path string) (scrapeFile, error) {
	var sf scrapeFile
	call := instrument.DependencyCall{Dependency: "filesystem", Operation: "read_scrape"}

	_, err := in.MeasureDependency(ctx, call, func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fi, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		bs, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		sf = scrapeFile{path: path, data: bs, modTime: fi.ModTime()}
		return 0, nil
	})
	if err != nil {
		return scrapeFile{}, fmt.Errorf("read scrape '%s': %w", path, err)
	}

	return sf, nil
}
