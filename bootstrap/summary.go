package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/beankit/beankit/container"
	"github.com/beankit/beankit/observability"
)

// InfrastructureInfo holds detailed infrastructure component information.
type InfrastructureInfo struct {
	Name    string
	Type    string // e.g. "server", "database", "cache"
	Status  string
	Details string
	Port    int
	Healthy bool
}

// RouteInfo represents a registered HTTP route.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	infrastructure  []InfrastructureInfo
	routes          []RouteInfo
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName:    serviceName,
		version:        version,
		infrastructure: make([]InfrastructureInfo, 0),
		routes:         make([]RouteInfo, 0),
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackInfrastructure adds an infrastructure component with detailed metadata.
func (s *Summary) TrackInfrastructure(name, componentType, status, details string, port int, healthy bool) {
	s.infrastructure = append(s.infrastructure, InfrastructureInfo{
		Name:    name,
		Type:    componentType,
		Status:  status,
		Details: details,
		Port:    port,
		Healthy: healthy,
	})
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
}

// Display prints the bootstrap summary. Components and cache statistics are
// collected live from the container, health from the aggregated check.
func (s *Summary) Display(c *container.Container, health *observability.ServiceHealth) {
	fmt.Printf("\n")
	fmt.Printf("🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.infrastructure) > 0 {
		fmt.Printf("📊 Infrastructure\n")
		for i, inf := range s.infrastructure {
			icon := statusIcon(inf.Status, inf.Healthy)
			details := inf.Details
			if inf.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			fmt.Printf("   %s %s %s: %s\n", treePrefix(i, len(s.infrastructure)), icon, inf.Name, details)
		}
		fmt.Printf("\n")
	}

	if c != nil {
		s.displayComponents(c)
	}

	if len(s.routes) > 0 {
		fmt.Printf("\n🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Printf("   %s %s%-7s\x1b[0m %s → %s\n",
				treePrefix(i, len(s.routes)), methodColor(r.Method), r.Method, r.Path, r.Handler)
		}
	}

	if health != nil && len(health.Components) > 0 {
		fmt.Printf("\n🏥 Health Check\n")
		for i, h := range health.Components {
			msg := ""
			if h.Message != "" {
				msg = fmt.Sprintf(" (%s)", h.Message)
			}
			fmt.Printf("   %s %s %s: %s%s\n",
				treePrefix(i, len(health.Components)), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		}
	}

	fmt.Printf("\n")
}

// displayComponents renders the container's registered definitions and the
// constructor cache statistics.
func (s *Summary) displayComponents(c *container.Container) {
	defs := c.Definitions()
	if len(defs) == 0 {
		fmt.Printf("📦 Components\n")
		fmt.Printf("   └── No components registered\n")
		return
	}

	fmt.Printf("📦 Components (%d)\n", len(defs))
	built := 0
	for i, d := range defs {
		fmt.Printf("   %s %s %s [%s] %s\n",
			treePrefix(i, len(defs)), definitionIcon(d), d.Name, d.Lifetime, d.Constructor)
		if d.Built {
			built++
		}
	}

	stats := c.CacheStats()
	fmt.Printf("\n   %d of %d built, constructor cache: %d entries, %d hits, %d misses\n",
		built, len(defs), stats.Entries, stats.Hits, stats.Misses)
}

// treePrefix returns the tree-drawing prefix for item i of n.
func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func statusIcon(status string, healthy bool) string {
	if !healthy {
		return "❌"
	}
	switch status {
	case "active", "initialized", "connected", "healthy":
		return "✅"
	case "lazy":
		return "⚡"
	case "inactive", "disabled":
		return "⏸️"
	case "error", "failed":
		return "❌"
	default:
		return "⚠️"
	}
}

func definitionIcon(d container.DefinitionInfo) string {
	switch {
	case d.Built:
		return "✅"
	case d.Lifetime == "transient":
		return "🔁"
	default:
		return "⚡"
	}
}

func healthStatusIcon(status observability.HealthStatus) string {
	switch status {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	case observability.HealthStatusDown:
		return "❌"
	default:
		return "❓"
	}
}

// methodColor returns the ANSI color for an HTTP method.
func methodColor(method string) string {
	switch method {
	case "GET":
		return "\x1b[34m"
	case "POST":
		return "\x1b[32m"
	case "PUT":
		return "\x1b[33m"
	case "PATCH":
		return "\x1b[36m"
	case "DELETE":
		return "\x1b[31m"
	default:
		return "\x1b[37m"
	}
}
