package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath is the route group of the settings API.
	APIPath = "/api/settings"

	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"

	// ErrNilDepsFatalLogMsg is used if app, cfg, store or registry is nil.
	ErrNilDepsFatalLogMsg = "app, cfg, store or registry is nil"
)
