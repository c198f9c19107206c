package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/invoxia/component"
	"github.com/kbukum/invoxia/plugin"
)

// Summary collects what startup did and prints it once the server listens.
type Summary struct {
	serviceName     string
	version         string
	environment     string
	startupDuration time.Duration
	plugins         plugin.Outcome
}

// NewSummary creates a summary for one service run.
func NewSummary(serviceName, version, environment string) *Summary {
	return &Summary{serviceName: serviceName, version: version, environment: environment}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// SetPlugins records the plugin registration outcome.
func (s *Summary) SetPlugins(o plugin.Outcome) {
	s.plugins = o
}

// Display writes the summary, with live health from registry, to w.
func (s *Summary) Display(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n🚀 %s v%s (%s) started in %.2fs\n\n",
		s.serviceName, s.version, s.environment, s.startupDuration.Seconds())

	var routes []component.Route
	if registry != nil {
		var infra []component.Description
		for _, c := range registry.All() {
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				if desc.Name == "" {
					desc.Name = c.Name()
				}
				infra = append(infra, desc)
			}
			if rp, ok := c.(component.RouteProvider); ok {
				routes = append(routes, rp.Routes()...)
			}
		}
		if len(infra) > 0 {
			fmt.Fprintf(w, "📊 Infrastructure\n")
			for i, d := range infra {
				details := d.Details
				if d.Port > 0 {
					details = fmt.Sprintf("%s (:%d)", details, d.Port)
				}
				fmt.Fprintf(w, "   %s %s [%s]: %s\n", branch(i, len(infra)), d.Name, d.Type, details)
			}
			fmt.Fprintln(w)
		}
	}

	s.displayPlugins(w)

	if len(routes) > 0 {
		fmt.Fprintf(w, "🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", branch(i, len(routes)), r.Method, r.Path, r.Handler)
		}
		fmt.Fprintln(w)
	}

	if registry != nil {
		health := registry.HealthAll(context.Background())
		if len(health) > 0 {
			fmt.Fprintf(w, "🏥 Health Check\n")
			for i, h := range health {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(health)), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
			fmt.Fprintln(w)
		}
	}
}

func (s *Summary) displayPlugins(w io.Writer) {
	total := len(s.plugins.Registered) + len(s.plugins.Skipped) + len(s.plugins.Errors)
	if total == 0 {
		return
	}
	fmt.Fprintf(w, "🧩 Plugins (%d registered, %d skipped, %d failed)\n",
		len(s.plugins.Registered), len(s.plugins.Skipped), len(s.plugins.Errors))
	i := 0
	for _, name := range s.plugins.Registered {
		fmt.Fprintf(w, "   %s ✅ %s\n", branch(i, total), name)
		i++
	}
	for _, sk := range s.plugins.Skipped {
		fmt.Fprintf(w, "   %s ⏸️ %s (%s)\n", branch(i, total), sk.Name, sk.Reason)
		i++
	}
	for _, f := range s.plugins.Errors {
		fmt.Fprintf(w, "   %s ❌ %s (%s)\n", branch(i, total), f.Name, f.Reason)
		i++
	}
	fmt.Fprintln(w)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
