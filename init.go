package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	sentinelStart = "<!-- codemodel:start -->"
	sentinelEnd   = "<!-- codemodel:end -->"
)

// runInit implements the `codemodel init` subcommand, which writes (or
// updates) a codemodel usage section in a CLAUDE.md file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("codemodel init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: codemodel init [flags] [path-to-CLAUDE.md]

Write a codemodel usage section to a CLAUDE.md file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && fs.NArg() == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "CLAUDE.md"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote codemodel section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped codemodel documentation block.
func generateSection() string {
	body := `## codemodel — Project Code Model

Run ` + "`codemodel`" + ` at the start of any task on an unfamiliar JavaScript or
TypeScript codebase. It produces a ranked map of files, their exported
symbols, and the import dependencies between them.

**Availability:** Check with ` + "`codemodel --version`" + ` first; skip gracefully if
not found.

**Run it:**
` + "```" + `bash
codemodel                            # current directory
codemodel /path/to/project           # explicit path
codemodel -n 20                      # limit to top 20 ranked files
codemodel -x vendor,gen              # extra exclude patterns
codemodel fresh                      # check/patch the persisted model
codemodel fresh -force               # demand a full rebuild
` + "```" + `

**How to use the output:**

1. **Read files in ranked order.** The ` + "`files`" + ` table is sorted by import
   centrality (most depended-upon first).

2. **Use ` + "`artifacts`" + ` to find exports and classes** before grepping for a
   symbol definition.

3. **Use ` + "`dependencies`" + ` to trace imports** between project files without
   opening them.

4. **Run ` + "`codemodel fresh`" + ` before trusting a persisted model** — it reports
   whether the model lags the git history and patches it when it does.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
