// Package main generates CLI reference documentation from the meli-lister
// command tree, as markdown, man pages or YAML.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/meli-lister/cmd/meli-lister/cmd"
	"github.com/donaldgifford/meli-lister/pkg/logger"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated docs")
	format := flag.String("format", "markdown", "output format (markdown, man, yaml)")
	flag.Parse()

	log := logger.New("info", "text")

	root := cmd.Root()
	root.DisableAutoGenTag = true

	if err := generate(root, *output, *format); err != nil {
		log.Error("generating docs", "format", *format, "error", err)
		os.Exit(1)
	}

	log.Info("CLI docs generated", "dir", *output, "format", *format)
}

func generate(root *cobra.Command, dir, format string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	switch format {
	case "markdown":
		return doc.GenMarkdownTree(root, dir)
	case "man":
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   "MELI-LISTER",
			Section: "1",
			Source:  "meli-lister " + cmd.Version,
		}, dir)
	case "yaml":
		return doc.GenYamlTree(root, dir)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
