// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/meli-lister/tools/dashgen/panels"
)

// OverviewUID is the stable Grafana UID of the overview dashboard.
const OverviewUID = "meli-lister-overview"

// BuildOverview constructs the meli-lister overview dashboard with all metric
// rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("meli-lister Overview").
		Uid(OverviewUID).
		Tags([]string{"meli-lister", "mercadolibre"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	b.WithRow(dashboard.NewRowBuilder("MercadoLibre API").
		WithPanel(panels.APICallsRate()).
		WithPanel(panels.APILatency()).
		WithPanel(panels.DailyUsage()).
		WithPanel(panels.LimitHits()))

	b.WithRow(dashboard.NewRowBuilder("Listings").
		WithPanel(panels.ListingOutcomes()).
		WithPanel(panels.RejectionRatio()).
		WithPanel(panels.ActiveListingsFanOut()))

	b.WithRow(dashboard.NewRowBuilder("Sessions").
		WithPanel(panels.Authorizations()).
		WithPanel(panels.SessionChurn()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
