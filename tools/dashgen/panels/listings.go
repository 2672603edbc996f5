package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ListingOutcomes returns a timeseries panel comparing accepted and
// rejected listing submissions.
func ListingOutcomes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Listing Outcomes").
		Description("Listings accepted and rejected by the marketplace per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`increase(`+Sel("meli_lister_listings_created_total")+`[1h])`, "created", "A")).
		WithTarget(PromQuery(`increase(`+Sel("meli_lister_listings_rejected_total")+`[1h])`, "rejected", "B")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// RejectionRatio returns a stat panel showing the share of submissions the
// marketplace rejected over the last day.
func RejectionRatio() *stat.PanelBuilder {
	rejected := `increase(` + Sel("meli_lister_listings_rejected_total") + `[24h])`
	created := `increase(` + Sel("meli_lister_listings_created_total") + `[24h])`
	return stat.NewPanelBuilder().
		Title("Rejection Ratio (24h)").
		Description("Rejected submissions as percentage of all submissions").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(6).
		WithTarget(PromQuery(rejected+` / (`+rejected+` + `+created+`) * 100`, "", "A")).
		Unit("percent").
		Thresholds(ThresholdsGreenYellowRed(25, 50)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// ActiveListingsFanOut returns a timeseries panel showing the median number of
// item lookups behind one active-listings view.
func ActiveListingsFanOut() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Active Listings Fan-out (p50)").
		Description("Item detail lookups per active-listings view").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(6).
		WithTarget(PromQuery(
			`histogram_quantile(0.5, sum(rate(`+Sel("meli_lister_active_listings_items_fetched_bucket")+`[1h])) by (le))`,
			"p50", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
