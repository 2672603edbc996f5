package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// meli-lister operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "meli-lister-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "meli-lister-alerts",
					Rules: []Rule{
						{
							Alert: "MeliListerDown",
							Expr:  `absent(up{job="meli-lister"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "meli-lister is down",
								"description": "The meli-lister job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "MeliListerReadinessDown",
							Expr:  `meli_lister_readyz_up{job="meli-lister"} == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "meli-lister session backend is unreachable",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
							},
						},
						{
							Alert: "MeliListerHighErrorRate",
							Expr:  `sum(meli_lister:http_errors:rate5m) / sum(meli_lister:http_requests:rate5m) > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on meli-lister",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "MeliListerMarketplaceErrors",
							Expr:  `sum(meli_lister:marketplace_errors:rate5m) / sum(meli_lister:marketplace_requests:rate5m) > 0.1`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "MercadoLibre API calls are failing",
								"description": "More than 10% of outbound MercadoLibre API calls have failed for 10 minutes.",
							},
						},
						{
							Alert: "MeliListerQuotaWarning",
							Expr:  `meli_lister_marketplace_daily_usage{job="meli-lister"} > 4000`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "MercadoLibre API quota above 80%",
								"description": "Rolling 24h API usage has passed 4000 of the 5000 daily calls.",
							},
						},
						{
							Alert: "MeliListerQuotaExhausted",
							Expr:  `increase(meli_lister_marketplace_daily_limit_hits_total{job="meli-lister"}[15m]) > 0`,
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "MercadoLibre API daily limit reached",
								"description": "Outbound calls are being refused until the rolling window frees capacity.",
							},
						},
						{
							Alert: "MeliListerAuthorizationFailures",
							Expr:  `sum(increase(meli_lister_authorizations_total{job="meli-lister",result!="success"}[30m])) > 5`,
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Repeated failed MercadoLibre logins",
								"description": "More than 5 authorization callbacks failed in the last 30 minutes.",
							},
						},
					},
				},
			},
		},
	}
}
