package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/meli-lister/tools/dashgen/dashboards"
	"github.com/donaldgifford/meli-lister/tools/dashgen/rules"
	"github.com/donaldgifford/meli-lister/tools/dashgen/validate"
)

const generatedHeader = "# Code generated by tools/dashgen. DO NOT EDIT.\n"

// Output paths relative to Config.OutputDir.
var (
	dashboardPath = filepath.Join("grafana", "data", "meli-lister-overview.json")
	recordingPath = filepath.Join("prometheus", "meli-lister-recording-rules.yaml")
	alertsPath    = filepath.Join("prometheus", "meli-lister-alerts.yaml")
)

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	noDashboard := flag.Bool("no-dashboard", false, "skip the Grafana dashboard")
	noRules := flag.Bool("no-rules", false, "skip the Prometheus rule files")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	cfg.DashboardEnabled = !*noDashboard
	cfg.RulesEnabled = !*noRules

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, validateOnly bool) error {
	artifacts, err := render(cfg)
	if err != nil {
		return err
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	paths := make([]string, 0, len(artifacts))
	for p := range artifacts {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, rel := range paths {
		full := filepath.Join(cfg.OutputDir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, artifacts[rel], 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", full, err)
		}
		fmt.Printf("dashgen: wrote %s\n", full)
	}
	return nil
}

// render builds and validates every enabled artifact, keyed by output path.
func render(cfg Config) (map[string][]byte, error) {
	out := make(map[string][]byte)
	var errs []error

	if cfg.DashboardEnabled {
		dash, err := dashboards.BuildOverview().Build()
		if err != nil {
			return nil, fmt.Errorf("building dashboard: %w", err)
		}
		data, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding dashboard: %w", err)
		}
		data = append(data, '\n')
		if err := validate.Dashboard(data, KnownMetrics); err != nil {
			errs = append(errs, err)
		}
		out[dashboardPath] = data
	}

	if cfg.RulesEnabled {
		for path, pr := range map[string]rules.PrometheusRule{
			recordingPath: rules.RecordingRules(),
			alertsPath:    rules.AlertRules(),
		} {
			if err := validate.Rules(pr, KnownMetrics); err != nil {
				errs = append(errs, err)
			}
			data, err := yaml.Marshal(pr)
			if err != nil {
				return nil, fmt.Errorf("encoding %s: %w", path, err)
			}
			out[path] = append([]byte(generatedHeader), data...)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return out, nil
}
