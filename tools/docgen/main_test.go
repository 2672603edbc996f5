package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "meli-lister", Short: "root"}
	root.AddCommand(&cobra.Command{Use: "serve", Short: "Start the web server", Run: func(*cobra.Command, []string) {}})
	root.DisableAutoGenTag = true
	return root
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format   string
		wantFile string
	}{
		{format: "markdown", wantFile: "meli-lister_serve.md"},
		{format: "man", wantFile: "meli-lister-serve.1"},
		{format: "yaml", wantFile: "meli-lister_serve.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			dir := filepath.Join(t.TempDir(), "cli")
			require.NoError(t, generate(testRoot(), dir, tt.format))

			data, err := os.ReadFile(filepath.Join(dir, tt.wantFile))
			require.NoError(t, err)
			assert.Contains(t, string(data), "Start the web server")
		})
	}
}

func TestGenerate_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := generate(testRoot(), t.TempDir(), "html")
	require.EqualError(t, err, `unknown format "html"`)
}
