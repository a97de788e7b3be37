// Command globalns runs the Global Namespace Clustering Engine end-to-end
// against a pre-parsed item index, following the CLI shape of
// viant-linager's sibling tools and standardbeagle-lci's cmd/lci
// (github.com/urfave/cli/v2 App with a flat flag set plus a single default
// action, no subcommands — this engine has exactly one thing to do).
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"
	"github.com/viant/afs"

	"github.com/viant/globalns/config"
	"github.com/viant/globalns/engine"
	"github.com/viant/globalns/info"
)

func main() {
	app := &cli.App{
		Name:  "globalns",
		Usage: "cluster Global-namespace API types into stable wiki folders",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the globalns.yaml configuration document",
			},
			&cli.StringFlag{
				Name:     "items",
				Usage:    "glob of item-index JSON shards to merge (e.g. 'corpus/*.items.json')",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "output root stub documents are written under",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "pathmap",
				Usage: "path to the persistent path map document",
				Value: "globalns.pathmap.json",
			},
			&cli.BoolFlag{
				Name:  "force-rebuild",
				Usage: "ignore the persistent path map and re-run every rule",
			},
			&cli.BoolFlag{
				Name:  "accept-legacy-map",
				Usage: "migrate a path map written by an older schema version instead of discarding it",
			},
			&cli.BoolFlag{
				Name:  "prune-stale",
				Usage: "age out path map entries not observed for thresholds.stale_prune_after_runs consecutive runs",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "re-run the pipeline whenever the item index or config file changes on disk",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "path the JSON cluster report is written to (stdout if empty)",
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("globalns: %v", err)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	fs := afs.New()

	if c.Bool("watch") {
		return watchAndRun(ctx, fs, c)
	}
	_, err := runOnce(ctx, fs, c)
	return err
}

// runOnce performs exactly one load-resolve-persist-report pass.
func runOnce(ctx context.Context, fs afs.Service, c *cli.Context) (engine.Result, error) {
	start := time.Now()

	cfgPath := c.String("config")
	if cfgPath == "" {
		cfgPath = filepath.Join(config.LocateCorpusRoot("."), "globalns.yaml")
	}
	cfg, err := config.Load(ctx, fs, cfgPath)
	if err != nil {
		return engine.Result{}, fmt.Errorf("loading config: %w", err)
	}
	if c.Bool("force-rebuild") {
		cfg.ForceRebuild = true
	}

	items, err := loadItems(ctx, fs, c.String("items"))
	if err != nil {
		return engine.Result{}, fmt.Errorf("loading item index: %w", err)
	}

	result, err := engine.Run(ctx, fs, items, engine.Options{
		Config:          cfg,
		PathMapLocation: c.String("pathmap"),
		AcceptLegacyMap: c.Bool("accept-legacy-map"),
		OutputRoot:      c.String("output"),
		PruneStale:      c.Bool("prune-stale"),
		DurationSeconds: time.Since(start).Seconds(),
	})
	if err != nil {
		return engine.Result{}, fmt.Errorf("running engine: %w", err)
	}
	// The report is built inside engine.Run; restamp it with the elapsed
	// time including the run itself.
	result.Report.Meta.Duration = time.Since(start).Seconds()

	if err := emitReport(ctx, fs, c.String("report"), result); err != nil {
		return engine.Result{}, fmt.Errorf("emitting report: %w", err)
	}

	log.Printf("globalns: resolved %d items, wrote %d stubs, folders=%d misc_share=%.3f",
		result.Report.Meta.TotalItems, result.StubsWritten,
		result.Report.Stats.Metrics.TotalFolders, result.Report.Stats.Metrics.MiscShare)
	return result, nil
}

// loadItems expands the items glob via doublestar and merges every matching
// JSON shard (each a flat map of identifier to info.Item) into one index,
// letting one invocation consume several parser-output shards — a realistic
// multi-file ingestion path the single-document engine itself never needs
// to know about.
func loadItems(ctx context.Context, fs afs.Service, pattern string) (info.Index, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no item-index shards matched %q", pattern)
	}

	merged := info.Index{}
	for _, p := range paths {
		data, err := fs.DownloadWithURL(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("reading shard %s: %w", p, err)
		}
		var shard info.Index
		if err := json.Unmarshal(data, &shard); err != nil {
			return nil, fmt.Errorf("parsing shard %s: %w", p, err)
		}
		for uid, it := range shard {
			merged[uid] = it
		}
	}
	return merged, nil
}

func emitReport(ctx context.Context, fs afs.Service, loc string, result engine.Result) error {
	payload, err := json.MarshalIndent(result.Report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if loc == "" {
		_, err := os.Stdout.Write(append(payload, '\n'))
		return err
	}
	return fs.Upload(ctx, loc, 0644, bytes.NewReader(payload))
}

// watchAndRun re-runs the full pipeline whenever the config file or any file
// matched by the items glob's containing directories changes, following
// oriys-nexus's fsnotify.Loader pattern (watch, reload, repeat) rather than
// a polling loop.
func watchAndRun(ctx context.Context, fs afs.Service, c *cli.Context) error {
	if _, err := runOnce(ctx, fs, c); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(c.String("items"), c.String("config"))
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			log.Printf("globalns: watch %s: %v", d, err)
		}
	}

	log.Printf("globalns: watching %d director(ies) for changes", len(dirs))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			log.Printf("globalns: %s changed, re-running", ev.Name)
			if _, err := runOnce(ctx, fs, c); err != nil {
				log.Printf("globalns: run failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("globalns: watcher error: %v", err)
		}
	}
}

func watchDirs(itemsGlob, configPath string) ([]string, error) {
	dirs := map[string]bool{dirOf(itemsGlob): true}
	if configPath != "" {
		dirs[dirOf(configPath)] = true
	}
	out := make([]string, 0, len(dirs))
	for d := range dirs {
		out = append(out, d)
	}
	return out, nil
}

func dirOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return "."
}
