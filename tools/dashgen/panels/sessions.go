package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// Authorizations returns a timeseries panel showing OAuth callbacks by result
// next to the number of logins started.
func Authorizations() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Logins").
		Description("Login flows started and authorization callbacks by result").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`increase(`+Sel("meli_lister_logins_started_total")+`[1h])`, "started", "A")).
		WithTarget(PromQuery(
			`sum(increase(`+Sel("meli_lister_authorizations_total")+`[1h])) by (result)`,
			"{{result}}", "B",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// SessionChurn returns a timeseries panel showing sessions created and
// purged by the janitor.
func SessionChurn() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Session Churn").
		Description("Browser sessions created and expired sessions purged per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`increase(`+Sel("meli_lister_sessions_created_total")+`[1h])`, "created", "A")).
		WithTarget(PromQuery(`increase(`+Sel("meli_lister_sessions_purged_total")+`[1h])`, "purged", "B")).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
