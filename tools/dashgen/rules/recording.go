package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "meli-lister-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "meli-lister-recording",
					Rules: []Rule{
						{
							Record: "meli_lister:http_requests:rate5m",
							Expr:   `sum by (path) (rate(meli_lister_http_requests_total{job="meli-lister"}[5m]))`,
						},
						{
							Record: "meli_lister:http_errors:rate5m",
							Expr:   `sum by (path) (rate(meli_lister_http_requests_total{job="meli-lister",status=~"5.."}[5m]))`,
						},
						{
							Record: "meli_lister:marketplace_requests:rate5m",
							Expr:   `sum by (method, endpoint) (rate(meli_lister_marketplace_requests_total{job="meli-lister"}[5m]))`,
						},
						{
							Record: "meli_lister:marketplace_errors:rate5m",
							Expr:   `sum by (method, endpoint) (rate(meli_lister_marketplace_requests_total{job="meli-lister",status=~"5..|error"}[5m]))`,
						},
					},
				},
			},
		},
	}
}
