// codemodel builds a structural model of a JavaScript/TypeScript project:
// it scans the tree, extracts exports/imports/classes/functions per file,
// and keeps a persisted model in sync with git history.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/karowan/codemodel/internal/config"
	"github.com/karowan/codemodel/internal/discover"
	"github.com/karowan/codemodel/internal/freshness"
	"github.com/karowan/codemodel/internal/graph"
	"github.com/karowan/codemodel/internal/instance"
	"github.com/karowan/codemodel/internal/ranking"
	"github.com/karowan/codemodel/internal/toon"
	"github.com/karowan/codemodel/internal/vcs"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "fresh":
			return runFresh(args[1:], stdout, stderr)
		case "init":
			return runInit(args[1:], stdout, stderr)
		}
	}
	return runScan(args, stdout, stderr)
}

func runScan(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("codemodel", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		maxFiles    int
		excludes    string
		includes    string
		showVersion bool
	)
	fs.IntVar(&maxFiles, "n", 0, "maximum number of files to include in the report")
	fs.IntVar(&maxFiles, "max-files", 0, "maximum number of files to include in the report")
	fs.StringVar(&excludes, "x", "", "comma-separated exclude patterns (added to config)")
	fs.StringVar(&excludes, "exclude", "", "comma-separated exclude patterns (added to config)")
	fs.StringVar(&includes, "i", "", "comma-separated include patterns")
	fs.StringVar(&includes, "include", "", "comma-separated include patterns")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}
	if showVersion {
		_, _ = fmt.Fprintf(stdout, "codemodel %s\n", version)
		return nil
	}

	root, err := resolveRoot(fs)
	if err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	excludePatterns := append(cfg.Exclude, splitList(excludes)...)
	includePatterns := append(cfg.Include, splitList(includes)...)

	res, err := discover.Discover(root, excludePatterns, includePatterns, stderr)
	if err != nil {
		return err
	}

	edges := graph.BuildEdges(res.ImportGraph)
	paths := make([]string, 0, len(res.RawArtifacts))
	for i := range res.RawArtifacts {
		paths = append(paths, res.RawArtifacts[i].Path)
	}
	ranks := graph.Rank(paths, edges)

	res, edges = ranking.SelectTop(res, ranks, edges, maxFiles)

	_, _ = fmt.Fprintln(stdout, toon.Encode(filepath.Base(root), res, ranks, edges))
	return nil
}

func runFresh(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("codemodel fresh", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		modelDir   string
		force      bool
		autoUpdate bool
	)
	fs.StringVar(&modelDir, "model-dir", "", "model directory (default from config)")
	fs.BoolVar(&force, "force", false, "signal a full rebuild regardless of state")
	fs.BoolVar(&autoUpdate, "auto-update", true, "patch a stale model in place")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	root, err := resolveRoot(fs)
	if err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	dir := cfg.ModelPath(root)
	if modelDir != "" {
		dir = modelDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
	}

	checker := &freshness.Checker{
		ProjectRoot: root,
		Store:       &instance.Store{Dir: dir},
		History:     &vcs.Git{Root: root},
		Warn:        stderr,
	}
	res, err := checker.EnsureFresh(force, autoUpdate)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, _ = fmt.Fprintln(stdout, string(out))
	return nil
}

func resolveRoot(fs *flag.FlagSet) (string, error) {
	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", root)
	}
	return root, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-n": true, "--n": true,
	"-max-files": true, "--max-files": true,
	"-x": true, "--x": true,
	"-exclude": true, "--exclude": true,
	"-i": true, "--i": true,
	"-include": true, "--include": true,
	"-model-dir": true, "--model-dir": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag
// package can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
