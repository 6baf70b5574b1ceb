package handlers

import "twinelephant.com/fireworks-web/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	Debug            bool
}

// AnalyticsFromConfig builds Analytics from the site settings. Dev mode turns
// on debug so hits go to the GA debug view.
func AnalyticsFromConfig(site config.SiteConfig) Analytics {
	return Analytics{
		GA4MeasurementID: site.GAMeasurementID,
		Debug:            site.DevMode,
	}
}
