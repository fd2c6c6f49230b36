package config

// WebConfig describes the HTTP listener serving the dashboard.
type WebConfig struct {
	Listen string `json:"listen"`
}

// SetDefaults applies sane defaults.
func (c *WebConfig) SetDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
}
