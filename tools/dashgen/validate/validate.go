// Package validate checks generated dashboards and rules against the set of
// metric names the service actually exports.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/meli-lister/tools/dashgen/rules"
)

// MetricNames parses a PromQL expression and returns the sorted, de-duplicated
// metric names it selects.
func MetricNames(expr string) ([]string, error) {
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", expr, err)
	}

	var names []string
	parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
		if vs, ok := node.(*parser.VectorSelector); ok && vs.Name != "" {
			names = append(names, vs.Name)
		}
		return nil
	})

	slices.Sort(names)
	return slices.Compact(names), nil
}

// Expr reports an error when expr does not parse or references a metric that
// is missing from known.
func Expr(expr string, known map[string]bool) error {
	names, err := MetricNames(expr)
	if err != nil {
		return err
	}

	var errs []error
	for _, n := range names {
		if !known[n] {
			errs = append(errs, fmt.Errorf("unknown metric %q in %q", n, expr))
		}
	}
	return errors.Join(errs...)
}

// Rules validates every expression in a PrometheusRule.
func Rules(pr rules.PrometheusRule, known map[string]bool) error {
	var errs []error
	for _, g := range pr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			if err := Expr(r.Expr, known); err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", g.Name, name, err))
			}
		}
	}
	return errors.Join(errs...)
}

type panelJSON struct {
	Title   string `json:"title"`
	Targets []struct {
		Expr string `json:"expr"`
	} `json:"targets"`
	Panels []panelJSON `json:"panels"`
}

// DashboardExprs returns every Prometheus target expression in a rendered
// Grafana dashboard, keyed by panel title. Rows are walked recursively.
func DashboardExprs(dashboardJSON []byte) (map[string][]string, error) {
	var doc struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(dashboardJSON, &doc); err != nil {
		return nil, fmt.Errorf("decoding dashboard: %w", err)
	}

	out := make(map[string][]string)
	var walk func([]panelJSON)
	walk = func(ps []panelJSON) {
		for _, p := range ps {
			for _, t := range p.Targets {
				if t.Expr != "" {
					out[p.Title] = append(out[p.Title], t.Expr)
				}
			}
			walk(p.Panels)
		}
	}
	walk(doc.Panels)
	return out, nil
}

// Dashboard validates every target expression in a rendered dashboard.
func Dashboard(dashboardJSON []byte, known map[string]bool) error {
	exprs, err := DashboardExprs(dashboardJSON)
	if err != nil {
		return err
	}

	var errs []error
	for title, list := range exprs {
		for _, e := range list {
			if err := Expr(e, known); err != nil {
				errs = append(errs, fmt.Errorf("panel %q: %w", title, err))
			}
		}
	}
	return errors.Join(errs...)
}
